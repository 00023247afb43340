package folio

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves fixed payments and counts lookups.
type fakeSource struct {
	payments map[string][]DividendPayment
	err      error
	calls    int
}

func (f *fakeSource) Dividends(_ context.Context, symbol string) ([]DividendPayment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payments[symbol], nil
}

// mapCache is a DividendCache backed by a map.
type mapCache map[string][]DividendPayment

func (m mapCache) Get(_ context.Context, symbol string) ([]DividendPayment, bool, error) {
	p, ok := m[symbol]
	return p, ok, nil
}

func (m mapCache) Put(_ context.Context, symbol string, payments []DividendPayment) error {
	m[symbol] = payments
	return nil
}

func TestInjectDividends(t *testing.T) {
	d := func(day int) date.Date { return date.New(2025, 1, day) }

	testCases := []struct {
		name     string
		trades   []Transaction
		payments map[string][]DividendPayment
		want     []Transaction
	}{
		{
			name: "held on payment then sold",
			trades: []Transaction{
				NewBuy(d(1), "DIV", 100, 10, false),
				NewSell(d(15), "DIV", 100, 11, false),
			},
			payments: map[string][]DividendPayment{
				"DIV": {{Date: d(10), Amount: 1}, {Date: d(20), Amount: 1}},
			},
			want: []Transaction{
				{ID: dividendID("DIV", d(10), 1), Date: d(10), Instrument: "DIV", Action: Dividend, Shares: ptr(100.0), PricePerShare: ptr(1.0), Total: 100},
			},
		},
		{
			name: "trade on payment date counts",
			trades: []Transaction{
				NewBuy(d(1), "DIV", 10, 10, false),
				NewBuy(d(10), "DIV", 5, 10, false),
			},
			payments: map[string][]DividendPayment{
				"DIV": {{Date: d(10), Amount: 0.5}},
			},
			want: []Transaction{
				{ID: dividendID("DIV", d(10), 0.5), Date: d(10), Instrument: "DIV", Action: Dividend, Shares: ptr(15.0), PricePerShare: ptr(0.5), Total: 7.5},
			},
		},
		{
			name: "payment before the first trade is ignored",
			trades: []Transaction{
				NewBuy(d(5), "OTHER", 1, 10, false),
				NewBuy(d(6), "DIV", 1, 10, false),
			},
			payments: map[string][]DividendPayment{
				"DIV": {{Date: d(2), Amount: 1}},
			},
			want: nil,
		},
		{
			name: "short positions receive nothing",
			trades: []Transaction{
				NewSell(d(1), "DIV", 10, 10, true),
			},
			payments: map[string][]DividendPayment{
				"DIV": {{Date: d(3), Amount: 1}},
			},
			want: nil,
		},
		{
			name: "unsorted and invalid payments",
			trades: []Transaction{
				NewBuy(d(1), "DIV", 2, 10, false),
			},
			payments: map[string][]DividendPayment{
				"DIV": {{Date: d(8), Amount: 2}, {Date: d(4), Amount: 1}, {Date: d(6), Amount: 0}, {Amount: 3}, {Date: d(4), Amount: 1}},
			},
			want: []Transaction{
				{ID: dividendID("DIV", d(4), 1), Date: d(4), Instrument: "DIV", Action: Dividend, Shares: ptr(2.0), PricePerShare: ptr(1.0), Total: 2},
				{ID: dividendID("DIV", d(8), 2), Date: d(8), Instrument: "DIV", Action: Dividend, Shares: ptr(2.0), PricePerShare: ptr(2.0), Total: 4},
			},
		},
		{
			name:     "no trades",
			trades:   []Transaction{NewDeposit(d(1), 100)},
			payments: map[string][]DividendPayment{"DIV": {{Date: d(3), Amount: 1}}},
			want:     nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InjectDividends(tc.trades, tc.payments))
		})
	}
}

func TestInjectDividends_SortedAcrossInstruments(t *testing.T) {
	d := func(day int) date.Date { return date.New(2025, 1, day) }
	trades := []Transaction{
		NewBuy(d(1), "A", 1, 10, false),
		NewBuy(d(1), "B", 1, 10, false),
	}
	payments := map[string][]DividendPayment{
		"A": {{Date: d(9), Amount: 1}},
		"B": {{Date: d(3), Amount: 1}, {Date: d(12), Amount: 1}},
	}
	got := InjectDividends(trades, payments)
	require.Len(t, got, 3)
	assert.Equal(t, []date.Date{d(3), d(9), d(12)}, []date.Date{got[0].Date, got[1].Date, got[2].Date})
	assert.Equal(t, []string{"B", "A", "B"}, []string{got[0].Instrument, got[1].Instrument, got[2].Instrument})
}

func TestDividendID_Stable(t *testing.T) {
	on := date.New(2025, 5, 15)
	assert.Equal(t, dividendID("AAPL", on, 0.26), dividendID("AAPL", on, 0.26))
	assert.NotEqual(t, dividendID("AAPL", on, 0.26), dividendID("AAPL", on, 0.25))
	assert.NotEqual(t, dividendID("AAPL", on, 0.26), dividendID("MSFT", on, 0.26))
}

func TestDividendResolver(t *testing.T) {
	ctx := context.Background()
	d := date.New(2025, 3, 1)

	t.Run("lookup failure means no dividends", func(t *testing.T) {
		src := &fakeSource{err: errors.New("provider down")}
		r := NewDividendResolver(src, nil, testLogger(t))
		got := r.Resolve(ctx, []string{"A", "B"})
		assert.Equal(t, map[string][]DividendPayment{"A": nil, "B": nil}, got)
	})

	t.Run("duplicates and blanks are looked up once", func(t *testing.T) {
		src := &fakeSource{payments: map[string][]DividendPayment{"A": {{Date: d, Amount: 1}}}}
		r := NewDividendResolver(src, nil, testLogger(t))
		got := r.Resolve(ctx, []string{"A", " ", "A", ""})
		assert.Equal(t, 1, src.calls)
		assert.Equal(t, []DividendPayment{{Date: d, Amount: 1}}, got["A"])
	})

	t.Run("cache is filled then used", func(t *testing.T) {
		src := &fakeSource{payments: map[string][]DividendPayment{"A": {{Date: d, Amount: 1}}}}
		cache := mapCache{}
		r := NewDividendResolver(src, cache, testLogger(t))

		r.Resolve(ctx, []string{"A"})
		r.Resolve(ctx, []string{"A"})
		assert.Equal(t, 1, src.calls)
		assert.Equal(t, []DividendPayment{{Date: d, Amount: 1}}, cache["A"])
	})

	t.Run("nil source", func(t *testing.T) {
		r := NewDividendResolver(nil, nil, testLogger(t))
		assert.Equal(t, map[string][]DividendPayment{"A": nil}, r.Resolve(ctx, []string{"A"}))
	})
}
