package folio

import (
	"maps"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
)

// ValuePoint is the end of day value of a portfolio.
type ValuePoint struct {
	Date  date.Date `json:"date"`
	Value float64   `json:"value"`
}

// Holdings is the running state of a replay: signed share count per
// instrument (negative when short) and the cash balance.
//
// Holdings are rebuilt from scratch on every replay and never persisted.
type Holdings struct {
	Shares map[string]float64
	Cash   float64
}

func newHoldings() *Holdings {
	return &Holdings{Shares: make(map[string]float64)}
}

// apply updates the holdings with a single valid transaction.
func (h *Holdings) apply(tx Transaction) {
	switch tx.Action {
	case Buy:
		// a long buy, or the cover of a short: both add shares and spend cash.
		h.Shares[tx.Instrument] += *tx.Shares
		h.Cash -= tx.Total
	case Sell:
		// a long sale, or a short sale: both remove shares and receive cash.
		h.Shares[tx.Instrument] -= *tx.Shares
		h.Cash += tx.Total
	default:
		// withdrawals are pre-signed.
		h.Cash += tx.Total
	}
}

// Instruments returns the instruments with a non-zero position, sorted.
func (h *Holdings) Instruments() []string {
	var symbols []string
	for _, s := range slices.Sorted(maps.Keys(h.Shares)) {
		if h.Shares[s] != 0 {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// prices indexes trade prices per instrument by date. A later trade on the
// same date overwrites an earlier one, so a lookup returns the last trade
// price on or before the day.
type prices map[string]*date.History[float64]

func newPrices(sorted []Transaction) prices {
	p := make(prices)
	for _, tx := range sorted {
		if !tx.Action.IsTrade() || tx.check() != nil {
			continue
		}
		price, ok := tx.Price()
		if !ok {
			continue
		}
		h, ok := p[tx.Instrument]
		if !ok {
			h = new(date.History[float64])
			p[tx.Instrument] = h
		}
		h.Append(tx.Date, price)
	}
	return p
}

// asOf returns the last trade price of an instrument on or before a day.
func (p prices) asOf(instrument string, on date.Date) (float64, bool) {
	h, ok := p[instrument]
	if !ok {
		return 0, false
	}
	return h.ValueAsOf(on)
}

// marketValue computes cash plus the signed value of every position. Short
// positions count as a liability.
func (h *Holdings) marketValue(p prices, on date.Date) float64 {
	total := h.Cash
	// sum in a fixed order, so that replays give identical floats.
	for _, instrument := range h.Instruments() {
		price, ok := p.asOf(instrument, on)
		if !ok {
			continue
		}
		total += h.Shares[instrument] * price
	}
	return total
}

// ReplayValues replays the transactions in chronological order and returns one
// value point per distinct date, holding the end of day value of the
// portfolio. Values are floored at zero. Malformed transactions are skipped.
func ReplayValues(txs []Transaction) []ValuePoint {
	values, _ := replay(txs, zerolog.Nop())
	return values
}

// ReplayHoldings replays the transactions and returns the final holdings.
func ReplayHoldings(txs []Transaction) *Holdings {
	_, h := replay(txs, zerolog.Nop())
	return h
}

func replay(txs []Transaction, logger zerolog.Logger) ([]ValuePoint, *Holdings) {
	sorted := Sorted(txs)
	p := newPrices(sorted)
	h := newHoldings()
	history := new(date.History[float64])

	for i, tx := range sorted {
		if err := tx.check(); err != nil {
			logger.Debug().Int("index", i).Err(err).Msg("skip malformed transaction in replay")
			continue
		}
		h.apply(tx)
		history.Append(tx.Date, max(0, h.marketValue(p, tx.Date)))
	}

	values := make([]ValuePoint, 0, history.Len())
	for on, v := range history.Values() {
		values = append(values, ValuePoint{Date: on, Value: v})
	}
	return values, h
}
