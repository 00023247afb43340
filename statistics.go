package folio

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RiskFreeRate is the per trade target return used by the Sortino ratio, as
// a fraction (0.02 is 2%).
const RiskFreeRate = 0.02

// BinWidth is the width, in percentage points, of the return distribution bins.
const BinWidth = 2

// SymbolPnL is the realized profit or loss aggregated over one symbol.
type SymbolPnL struct {
	Symbol string  `json:"symbol"`
	PnL    float64 `json:"pnl"`
}

// Bin is one bucket [Min, Max) of the return distribution.
type Bin struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Positive bool    `json:"positive"`
}

// Distribution is the histogram of closed position returns, in percent.
type Distribution struct {
	Bins      []Bin   `json:"bins"`
	Median    float64 `json:"median"`
	MedianBin int     `json:"medianBin"` // MedianBin is the index of the bin holding the median, -1 when empty.
}

// Report holds the performance statistics of a portfolio.
//
// A Report is recomputed from scratch every time. Amounts and ratios are
// rounded to 2 decimals, hold times to 1. Ratios that cannot be computed are
// nil rather than zero.
type Report struct {
	ValueHistory []ValuePoint `json:"valueHistory"`
	CurrentValue float64      `json:"currentValue"`
	Cash         float64      `json:"cash"`

	RealizedPnL        float64 `json:"realizedPnl"`
	RealizedPnLPercent float64 `json:"realizedPnlPercent"`
	TotalReturnPercent float64 `json:"totalReturnPercent"`
	DividendIncome     float64 `json:"dividendIncome"`
	GrossProfit        float64 `json:"grossProfit"`
	GrossLoss          float64 `json:"grossLoss"`

	TotalTrades      int     `json:"totalTrades"`
	LongTrades       int     `json:"longTrades"`
	ShortTrades      int     `json:"shortTrades"`
	OpenPositions    int     `json:"openPositions"`
	Winners          int     `json:"winners"`
	Losers           int     `json:"losers"`
	Breakeven        int     `json:"breakeven"`
	WinPercent       float64 `json:"winPercent"`
	LossPercent      float64 `json:"lossPercent"`
	BreakevenPercent float64 `json:"breakevenPercent"`

	AvgHoldDays       float64 `json:"avgHoldDays"`
	AvgWinnerHoldDays float64 `json:"avgWinnerHoldDays"`
	AvgLoserHoldDays  float64 `json:"avgLoserHoldDays"`

	AvgGainPercent  float64  `json:"avgGainPercent"`
	AvgLossPercent  float64  `json:"avgLossPercent"`
	GainLossRatio   *float64 `json:"gainLossRatio"`
	RiskRewardRatio *float64 `json:"riskRewardRatio"`
	ProfitFactor    *float64 `json:"profitFactor"`
	SortinoRatio    *float64 `json:"sortinoRatio"`

	AvgPositionSize float64    `json:"avgPositionSize"` // AvgPositionSize is in percent of the base value.
	BiggestWinner   *SymbolPnL `json:"biggestWinner"`
	BiggestLoser    *SymbolPnL `json:"biggestLoser"`

	ReturnDistribution Distribution `json:"returnDistribution"`
}

// safeDiv divides a by b, and returns 0 when b is 0.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// mean returns the arithmetic mean of values, 0 when empty.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round2(v float64) float64 { return round(v, 2) }
func round1(v float64) float64 { return round(v, 1) }

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

// NewReport aggregates closed positions, the value history and the raw
// trades into a Report. baseValue normalizes amounts into percentages, cash
// is reported as is.
//
// All computations are done with full precision, rounding only happens on
// the returned values.
func NewReport(history []ValuePoint, match MatchResult, txs []Transaction, baseValue, cash float64) Report {
	closed := match.Closed
	r := Report{
		ValueHistory:  make([]ValuePoint, 0, len(history)),
		Cash:          round2(cash),
		TotalTrades:   len(closed),
		OpenPositions: len(match.Open),
	}
	for _, p := range history {
		r.ValueHistory = append(r.ValueHistory, ValuePoint{Date: p.Date, Value: round2(p.Value)})
	}
	var current float64
	if n := len(history); n > 0 {
		current = history[n-1].Value
	}

	var (
		pnls, gains, losses              []float64
		returns                          []float64
		holds, winnerHolds, loserHolds   []float64
		realized, grossProfit, grossLoss float64
	)
	for _, c := range closed {
		pnls = append(pnls, c.PnLPercent)
		returns = append(returns, c.PnLPercent/100)
		holds = append(holds, float64(c.HoldDays))
		realized += c.PnL
		if c.PnL > 0 {
			grossProfit += c.PnL
		} else {
			grossLoss -= c.PnL
		}
		if c.IsShort {
			r.ShortTrades++
		} else {
			r.LongTrades++
		}

		switch {
		case c.PnLPercent > 0:
			r.Winners++
			gains = append(gains, c.PnLPercent)
			winnerHolds = append(winnerHolds, float64(c.HoldDays))
		case c.PnLPercent < 0:
			r.Losers++
			losses = append(losses, c.PnLPercent)
			loserHolds = append(loserHolds, float64(c.HoldDays))
		default:
			r.Breakeven++
		}
	}

	total := float64(len(closed))
	r.WinPercent = round2(safeDiv(float64(r.Winners), total) * 100)
	r.LossPercent = round2(safeDiv(float64(r.Losers), total) * 100)
	r.BreakevenPercent = round2(safeDiv(float64(r.Breakeven), total) * 100)

	r.AvgHoldDays = round1(mean(holds))
	r.AvgWinnerHoldDays = round1(mean(winnerHolds))
	r.AvgLoserHoldDays = round1(mean(loserHolds))

	avgGain, avgLoss := mean(gains), mean(losses)
	r.AvgGainPercent = round2(avgGain)
	r.AvgLossPercent = round2(avgLoss)
	if avgLoss != 0 {
		ratio := math.Abs(avgGain) / math.Abs(avgLoss)
		r.GainLossRatio = &ratio
	}
	if avgGain != 0 {
		ratio := math.Abs(avgLoss) / math.Abs(avgGain)
		r.RiskRewardRatio = &ratio
	}
	if grossLoss != 0 {
		pf := grossProfit / grossLoss
		r.ProfitFactor = &pf
	}
	r.GainLossRatio = round2Ptr(r.GainLossRatio)
	r.RiskRewardRatio = round2Ptr(r.RiskRewardRatio)
	r.ProfitFactor = round2Ptr(r.ProfitFactor)
	r.SortinoRatio = round2Ptr(sortino(returns, RiskFreeRate))

	r.RealizedPnL = round2(realized)
	r.RealizedPnLPercent = round2(safeDiv(realized, baseValue) * 100)
	r.GrossProfit = round2(grossProfit)
	r.GrossLoss = round2(grossLoss)
	r.CurrentValue = round2(current)
	r.TotalReturnPercent = round2(safeDiv(current-baseValue, baseValue) * 100)
	r.DividendIncome = round2(dividendIncome(txs))
	r.AvgPositionSize = round2(avgPositionSize(txs, baseValue))

	r.BiggestWinner, r.BiggestLoser = biggest(closed)
	r.ReturnDistribution = distribution(pnls)
	return r
}

// sortino returns the Sortino ratio of per trade returns against a target
// rate, or nil when no return falls below the target.
func sortino(returns []float64, target float64) *float64 {
	var downside []float64
	for _, r := range returns {
		if r < target {
			d := r - target
			downside = append(downside, d*d)
		}
	}
	deviation := math.Sqrt(mean(downside))
	if deviation == 0 {
		return nil
	}
	ratio := (mean(returns) - target) / deviation
	return &ratio
}

// biggest aggregates realized profit and loss per symbol and returns the best
// and the worst symbols. A single losing symbol is only reported as the loser.
func biggest(closed []ClosedPosition) (winner, loser *SymbolPnL) {
	perSymbol := make(map[string]float64)
	for _, c := range closed {
		perSymbol[c.Symbol] += c.PnL
	}
	for _, symbol := range slices.Sorted(maps.Keys(perSymbol)) {
		pnl := perSymbol[symbol]
		if winner == nil || pnl > winner.PnL {
			winner = &SymbolPnL{Symbol: symbol, PnL: pnl}
		}
		if loser == nil || pnl < loser.PnL {
			loser = &SymbolPnL{Symbol: symbol, PnL: pnl}
		}
	}
	if len(perSymbol) == 1 && loser.PnL < 0 {
		winner = nil
	}
	if winner != nil {
		winner.PnL = round2(winner.PnL)
	}
	if loser != nil {
		loser.PnL = round2(loser.PnL)
	}
	return winner, loser
}

// avgPositionSize is the mean size of opening trades in percent of baseValue.
func avgPositionSize(txs []Transaction, baseValue float64) float64 {
	if baseValue <= 0 {
		return 0
	}
	var sizes []float64
	for _, tx := range txs {
		if !tx.Action.IsTrade() || !tx.Opening() || tx.check() != nil {
			continue
		}
		sizes = append(sizes, math.Abs(tx.Total)/baseValue*100)
	}
	return mean(sizes)
}

func dividendIncome(txs []Transaction) float64 {
	var incomes []float64
	for _, tx := range txs {
		if tx.Action == Dividend && tx.check() == nil {
			incomes = append(incomes, tx.Total)
		}
	}
	return floats.Sum(incomes)
}

// median returns the median of values, averaging the two middle values when
// the count is even. values must not be empty.
func median(values []float64) float64 {
	sorted := slices.Sorted(slices.Values(values))
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// distribution buckets returns (in percent) into bins of BinWidth points.
// Bounds are the extreme returns rounded outward to a multiple of BinWidth.
// A return on the upper bound is counted in the last bin.
func distribution(returns []float64) Distribution {
	if len(returns) == 0 {
		return Distribution{Bins: []Bin{}, MedianBin: -1}
	}
	lo := math.Floor(floats.Min(returns)/BinWidth) * BinWidth
	hi := math.Ceil(floats.Max(returns)/BinWidth) * BinWidth
	n := int((hi - lo) / BinWidth)
	if n == 0 {
		n = 1
	}

	bins := make([]Bin, n)
	for i := range bins {
		from := lo + float64(i*BinWidth)
		to := from + BinWidth
		bins[i] = Bin{
			Min:      from,
			Max:      to,
			Label:    fmt.Sprintf("%d to %d%%", int(from), int(to)),
			Positive: to > 0,
		}
	}
	index := func(v float64) int {
		return min(n-1, max(0, int(math.Floor((v-lo)/BinWidth))))
	}
	for _, r := range returns {
		bins[index(r)].Count++
	}

	m := median(returns)
	return Distribution{Bins: bins, Median: round2(m), MedianBin: index(m)}
}
