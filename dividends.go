package folio

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DividendPayment is a dividend paid by an instrument on a day.
type DividendPayment struct {
	Date   date.Date `json:"date"`
	Amount float64   `json:"amount"` // Amount is paid per share, strictly positive.
}

// DividendSource returns the known dividend payments of an instrument.
//
// Sources are external collaborators (a data provider, a file). They may
// return payments unsorted or with invalid entries, the resolver normalizes them.
type DividendSource interface {
	Dividends(ctx context.Context, symbol string) ([]DividendPayment, error)
}

// DividendCache stores resolved payments per instrument.
//
// It is an injected capability: the resolver never relies on a shared
// package level cache.
type DividendCache interface {
	// Get returns the cached payments and true on a hit.
	Get(ctx context.Context, symbol string) ([]DividendPayment, bool, error)
	Put(ctx context.Context, symbol string, payments []DividendPayment) error
}

// NoDividends is a DividendSource that knows no dividend.
type NoDividends struct{}

func (NoDividends) Dividends(context.Context, string) ([]DividendPayment, error) { return nil, nil }

// DividendResolver looks up dividend payments for a set of instruments.
type DividendResolver struct {
	source DividendSource
	cache  DividendCache
	logger zerolog.Logger
}

// NewDividendResolver creates a resolver over a source. cache may be nil.
func NewDividendResolver(source DividendSource, cache DividendCache, logger zerolog.Logger) *DividendResolver {
	if source == nil {
		source = NoDividends{}
	}
	return &DividendResolver{source: source, cache: cache, logger: logger}
}

// Resolve returns, for each symbol, its valid dividend payments sorted by date.
//
// A lookup failure is never an error: the symbol is reported with no
// dividends and the failure is logged.
func (r *DividendResolver) Resolve(ctx context.Context, symbols []string) map[string][]DividendPayment {
	resolved := make(map[string][]DividendPayment)
	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		if _, done := resolved[symbol]; done {
			continue
		}
		resolved[symbol] = r.lookup(ctx, symbol)
	}
	return resolved
}

func (r *DividendResolver) lookup(ctx context.Context, symbol string) []DividendPayment {
	if r.cache != nil {
		payments, hit, err := r.cache.Get(ctx, symbol)
		if err != nil {
			r.logger.Warn().Err(err).Str("symbol", symbol).Msg("dividend cache read failed")
		} else if hit {
			return normalizePayments(payments)
		}
	}

	payments, err := r.source.Dividends(ctx, symbol)
	if err != nil {
		r.logger.Warn().Err(err).Str("symbol", symbol).Msg("dividend lookup failed, assuming no dividends")
		return nil
	}
	payments = normalizePayments(payments)

	if r.cache != nil {
		if err := r.cache.Put(ctx, symbol, payments); err != nil {
			r.logger.Warn().Err(err).Str("symbol", symbol).Msg("dividend cache write failed")
		}
	}
	return payments
}

// normalizePayments drops payments without a date or with a non positive
// amount, sorts them by date and removes exact duplicates.
func normalizePayments(payments []DividendPayment) []DividendPayment {
	var valid []DividendPayment
	for _, p := range payments {
		if p.Date.IsZero() || !(p.Amount > 0) {
			continue
		}
		valid = append(valid, p)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Date.Before(valid[j].Date) })
	return slices.Compact(valid)
}

// shareTolerance absorbs float residue when comparing replayed share counts.
const shareTolerance = 1e-9

// dividendNamespace scopes the ids of synthesized dividend transactions.
var dividendNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/folio/dividend"))

// dividendID returns a stable id for a synthesized dividend, so that
// recomputing dividends gives identical transactions.
func dividendID(symbol string, on date.Date, amount float64) string {
	key := fmt.Sprintf("%s|%s|%s", symbol, on, strconv.FormatFloat(amount, 'g', -1, 64))
	return uuid.NewSHA1(dividendNamespace, []byte(key)).String()
}

// InjectDividends synthesizes the dividend income of a portfolio.
//
// For every instrument with known payments, the trades of that instrument are
// replayed up to and including each payment date. When the position is long
// on that date, a Dividend transaction is created for the shares held.
// Payments before the first trade of the portfolio are ignored, short
// positions receive nothing.
//
// trades must not contain dividends, they are ignored if present. The result
// is sorted by date and is identical for identical inputs.
func InjectDividends(trades []Transaction, payments map[string][]DividendPayment) []Transaction {
	perInstrument := make(map[string][]Transaction)
	var first date.Date
	for _, tx := range Sorted(trades) {
		if !tx.Action.IsTrade() || tx.check() != nil {
			continue
		}
		if first.IsZero() {
			first = tx.Date
		}
		perInstrument[tx.Instrument] = append(perInstrument[tx.Instrument], tx)
	}
	if first.IsZero() {
		return nil
	}

	var dividends []Transaction
	for _, symbol := range slices.Sorted(maps.Keys(payments)) {
		history := perInstrument[symbol]
		var held float64
		next := 0 // the cursor only moves forward across payments.
		for _, p := range normalizePayments(payments[symbol]) {
			for next < len(history) && !history[next].Date.After(p.Date) {
				switch history[next].Action {
				case Buy:
					held += *history[next].Shares
				case Sell:
					held -= *history[next].Shares
				}
				next++
			}
			if p.Date.Before(first) {
				continue
			}
			if held <= shareTolerance {
				continue
			}
			shares, perShare := held, p.Amount
			dividends = append(dividends, Transaction{
				ID:            dividendID(symbol, p.Date, p.Amount),
				Date:          p.Date,
				Instrument:    symbol,
				Action:        Dividend,
				Shares:        &shares,
				PricePerShare: &perShare,
				Total:         shares * perShare,
			})
		}
	}
	sort.SliceStable(dividends, func(i, j int) bool { return dividends[i].Date.Before(dividends[j].Date) })
	return dividends
}
