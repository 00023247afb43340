package folio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/etnz/folio/date"
)

// Action is a typed string identifying what a transaction does.
type Action string

// Actions a transaction can carry.
const (
	Buy            Action = "Buy"
	Sell           Action = "Sell"
	CashDeposit    Action = "CashDeposit"
	CashWithdrawal Action = "CashWithdrawal"
	Dividend       Action = "Dividend"
)

// IsTrade reports whether the action moves shares (Buy or Sell).
func (a Action) IsTrade() bool { return a == Buy || a == Sell }

// IsCash reports whether the action only moves cash.
func (a Action) IsCash() bool { return a == CashDeposit || a == CashWithdrawal || a == Dividend }

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool { return a.IsTrade() || a.IsCash() }

// ParseAction parses a string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action: %q", s)
	}
	return a, nil
}

// Transaction is one event affecting a portfolio.
//
// Transactions are values: the engine reads and re-derives them but never
// patches one in place.
//
// Total is the signed cash effect as recorded by the collaborator. Buy and Sell
// carry the positive trade amount; a withdrawal carries a negative total.
type Transaction struct {
	ID            string     `json:"id,omitempty"`
	Date          date.Date  `json:"date"`
	Timestamp     *time.Time `json:"timestamp,omitempty"` // Timestamp breaks ties between transactions on the same date.
	Instrument    string     `json:"instrument,omitempty"`
	Action        Action     `json:"action"`
	Shares        *float64   `json:"shares,omitempty"`
	PricePerShare *float64   `json:"pricePerShare,omitempty"`
	Total         float64    `json:"total"`
	IsShort       bool       `json:"isShort,omitempty"`
	Leverage      *float64   `json:"leverage,omitempty"` // Leverage is preserved but never used in computations.
}

// NewBuy creates a Buy transaction. A short Buy covers a short position.
func NewBuy(on date.Date, instrument string, shares, price float64, short bool) Transaction {
	return Transaction{
		Date:          on,
		Instrument:    instrument,
		Action:        Buy,
		Shares:        &shares,
		PricePerShare: &price,
		Total:         shares * price,
		IsShort:       short,
	}
}

// NewSell creates a Sell transaction. A short Sell opens a short position.
func NewSell(on date.Date, instrument string, shares, price float64, short bool) Transaction {
	return Transaction{
		Date:          on,
		Instrument:    instrument,
		Action:        Sell,
		Shares:        &shares,
		PricePerShare: &price,
		Total:         shares * price,
		IsShort:       short,
	}
}

// NewDeposit creates a CashDeposit transaction.
func NewDeposit(on date.Date, amount float64) Transaction {
	return Transaction{Date: on, Action: CashDeposit, Total: amount}
}

// NewWithdrawal creates a CashWithdrawal transaction, amount is given as a
// positive number and stored pre-signed.
func NewWithdrawal(on date.Date, amount float64) Transaction {
	return Transaction{Date: on, Action: CashWithdrawal, Total: -math.Abs(amount)}
}

// At returns a copy of t with the given ordering timestamp.
func (t Transaction) At(ts time.Time) Transaction {
	t.Timestamp = &ts
	return t
}

// SharesOrZero returns the number of shares, 0 when absent.
func (t Transaction) SharesOrZero() float64 {
	if t.Shares == nil {
		return 0
	}
	return *t.Shares
}

// Opening reports whether a trade opens a position: a long Buy or a short Sell.
func (t Transaction) Opening() bool {
	return (t.Action == Buy && !t.IsShort) || (t.Action == Sell && t.IsShort)
}

// Price returns the per share price of a trade. When PricePerShare is absent
// it is derived from the total. It returns false if no price can be known.
func (t Transaction) Price() (float64, bool) {
	if t.PricePerShare != nil {
		return *t.PricePerShare, true
	}
	if t.Shares != nil && *t.Shares > 0 {
		return math.Abs(t.Total) / *t.Shares, true
	}
	return 0, false
}

// check returns why t cannot be replayed, or nil if it can.
func (t Transaction) check() error {
	if t.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if !t.Action.Valid() {
		return fmt.Errorf("unknown action %q", t.Action)
	}
	if t.Action.IsTrade() || t.Action == Dividend {
		if t.Instrument == "" {
			return fmt.Errorf("%s without instrument", t.Action)
		}
		if t.Shares == nil {
			return fmt.Errorf("%s of %s without shares", t.Action, t.Instrument)
		}
	}
	return nil
}

// byDate is the ordering contract shared by every replay: ascending date,
// then ascending timestamp when both transactions carry one. Any other tie is
// left to the stable sort, which keeps the input order.
func byDate(a, b Transaction) bool {
	if a.Date != b.Date {
		return a.Date.Before(b.Date)
	}
	if a.Timestamp != nil && b.Timestamp != nil {
		return a.Timestamp.Before(*b.Timestamp)
	}
	return false
}

// Sorted returns a chronologically sorted copy of txs. The input is left untouched.
func Sorted(txs []Transaction) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return byDate(sorted[i], sorted[j]) })
	return sorted
}

// Instruments returns the distinct instruments traded (Buy or Sell) in txs,
// in order of first appearance.
func Instruments(txs []Transaction) []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, tx := range txs {
		if !tx.Action.IsTrade() || tx.Instrument == "" {
			continue
		}
		if _, ok := seen[tx.Instrument]; ok {
			continue
		}
		seen[tx.Instrument] = struct{}{}
		symbols = append(symbols, tx.Instrument)
	}
	return symbols
}

// WithoutDividends returns the transactions of txs that are not dividends.
func WithoutDividends(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Action != Dividend {
			out = append(out, tx)
		}
	}
	return out
}
