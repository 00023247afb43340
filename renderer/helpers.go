package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// Money formats an amount in a currency, "USD" when the code is unknown.
func Money(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	dec := decimal.NewFromFloat(amount).Round(int32(cur.Fraction))
	s := cur.Formatter().Format(dec.Abs().Shift(int32(cur.Fraction)).IntPart())
	if dec.IsNegative() {
		return "-" + s
	}
	return s
}

// SignedMoney is like Money with an explicit sign, and "-" for zero.
func SignedMoney(amount float64, currency string) string {
	s := Money(amount, currency)
	switch {
	case s == Money(0, currency):
		return "-"
	case amount > 0:
		return "+" + s
	}
	return s
}

// Percent formats a percentage with 2 decimals.
func Percent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2) + "%"
}

// SignedPercent is like Percent with an explicit sign for positive values.
func SignedPercent(p float64) string {
	if p > 0 {
		return "+" + Percent(p)
	}
	return Percent(p)
}

// Ratio formats an optional ratio, "n/a" when absent.
func Ratio(r *float64) string {
	if r == nil {
		return "n/a"
	}
	return decimal.NewFromFloat(*r).StringFixed(2)
}

// Shares formats a share count without trailing zeros.
func Shares(q float64) string {
	return decimal.NewFromFloat(q).String()
}

// days formats a duration in days.
func days(d float64) string {
	return fmt.Sprintf("%s d", decimal.NewFromFloat(d).StringFixed(1))
}
