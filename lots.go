package folio

import (
	"maps"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
)

// Lot is a slice of shares opened at one price on one day.
type Lot struct {
	Shares   float64   `json:"shares"`
	Price    float64   `json:"price"`
	OpenDate date.Date `json:"openDate"`
	IsShort  bool      `json:"isShort"`
}

// ClosedPosition is one realized round-trip: an opening lot (or part of it)
// matched against a closing trade.
//
// For a long position the entry is the buy and the exit the sale, for a short
// position the entry is the short sale and the exit the cover.
type ClosedPosition struct {
	Symbol     string    `json:"symbol"`
	EntryDate  date.Date `json:"entryDate"`
	ExitDate   date.Date `json:"exitDate"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	Shares     float64   `json:"shares"`
	PnLPercent float64   `json:"pnlPercent"`
	PnL        float64   `json:"pnl"` // PnL is the realized profit or loss in currency.
	HoldDays   int       `json:"holdDays"`
	IsShort    bool      `json:"isShort"`
}

// UnmatchedClose records the part of a closing trade that found no open lot.
// Those shares are dropped: no lot of the opposite direction is opened.
type UnmatchedClose struct {
	Symbol string    `json:"symbol"`
	Date   date.Date `json:"date"`
	Shares float64   `json:"shares"`
}

// MatchResult is the output of the FIFO lot matching.
type MatchResult struct {
	Closed    []ClosedPosition
	Open      map[string][]Lot // Open holds the lots still open per instrument, oldest first.
	Unmatched []UnmatchedClose
}

// OpenShares returns the signed number of shares still open for an
// instrument: long lots count positive, short lots negative.
func (r MatchResult) OpenShares(instrument string) float64 {
	var total float64
	for _, l := range r.Open[instrument] {
		if l.IsShort {
			total -= l.Shares
		} else {
			total += l.Shares
		}
	}
	return total
}

// lots is a FIFO queue: opening trades are pushed at the tail, closing trades
// consume from the head.
type lots []Lot

func (q lots) push(l Lot) lots { return append(q, l) }

// close consumes up to shares from the head of the queue at the given closing
// price and date. It returns the remaining queue, one closed position per lot
// touched, and the number of shares that could not be matched. Remainders
// within shareTolerance are float residue and count as zero.
func (q lots) close(symbol string, shares, price float64, on date.Date) (lots, []ClosedPosition, float64) {
	var closed []ClosedPosition
	for shares > shareTolerance && len(q) > 0 {
		head := &q[0]
		matched := min(head.Shares, shares)

		var pnl float64
		if head.IsShort {
			pnl = head.Price - price
		} else {
			pnl = price - head.Price
		}

		closed = append(closed, ClosedPosition{
			Symbol:     symbol,
			EntryDate:  head.OpenDate,
			ExitDate:   on,
			EntryPrice: head.Price,
			ExitPrice:  price,
			Shares:     matched,
			PnLPercent: safeDiv(pnl, head.Price) * 100,
			PnL:        pnl * matched,
			HoldDays:   max(0, on.DaysSince(head.OpenDate)),
			IsShort:    head.IsShort,
		})

		head.Shares -= matched
		shares -= matched
		if head.Shares <= shareTolerance {
			q = q[1:]
		}
	}
	return q, closed, shares
}

// MatchLots replays the trades of each instrument independently and matches
// closing trades against opening lots, first in first out.
//
// A trade opens a lot when it is a long Buy or a short Sell, any other trade
// closes. Shares closed beyond the open lots are reported in Unmatched and
// otherwise ignored.
func MatchLots(txs []Transaction) MatchResult {
	return matchLots(txs, zerolog.Nop())
}

func matchLots(txs []Transaction, logger zerolog.Logger) MatchResult {
	perInstrument := make(map[string][]Transaction)
	for i, tx := range Sorted(txs) {
		if !tx.Action.IsTrade() {
			continue
		}
		if err := tx.check(); err != nil {
			logger.Debug().Int("index", i).Err(err).Msg("skip malformed trade in lot matching")
			continue
		}
		perInstrument[tx.Instrument] = append(perInstrument[tx.Instrument], tx)
	}

	result := MatchResult{Open: make(map[string][]Lot)}
	for _, symbol := range slices.Sorted(maps.Keys(perInstrument)) {
		var queue lots
		for _, tx := range perInstrument[symbol] {
			price, ok := tx.Price()
			if !ok {
				logger.Debug().Str("instrument", symbol).Stringer("date", tx.Date).Msg("skip trade without price in lot matching")
				continue
			}
			shares := *tx.Shares
			if shares <= 0 {
				continue
			}
			if tx.Opening() {
				queue = queue.push(Lot{Shares: shares, Price: price, OpenDate: tx.Date, IsShort: tx.IsShort})
				continue
			}

			var closed []ClosedPosition
			var excess float64
			queue, closed, excess = queue.close(symbol, shares, price, tx.Date)
			result.Closed = append(result.Closed, closed...)
			if excess > shareTolerance {
				logger.Warn().
					Str("instrument", symbol).
					Stringer("date", tx.Date).
					Float64("shares", excess).
					Msg("closing trade exceeds open lots, excess dropped")
				result.Unmatched = append(result.Unmatched, UnmatchedClose{Symbol: symbol, Date: tx.Date, Shares: excess})
			}
		}
		if len(queue) > 0 {
			result.Open[symbol] = slices.Clone(queue)
		}
	}
	return result
}
