// Package renderer turns engine results into markdown documents.
package renderer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/folio"
)

// ReportMarkdown renders the statistics report.
func ReportMarkdown(r folio.Report, currency string) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Portfolio Statistics\n\n")
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Current Value | %s |\n", Money(r.CurrentValue, currency))
	fmt.Fprintf(&b, "| Cash | %s |\n", Money(r.Cash, currency))
	fmt.Fprintf(&b, "| Total Return | %s |\n", SignedPercent(r.TotalReturnPercent))
	fmt.Fprintf(&b, "| Realized P/L | %s (%s) |\n", SignedMoney(r.RealizedPnL, currency), SignedPercent(r.RealizedPnLPercent))
	fmt.Fprintf(&b, "| Dividend Income | %s |\n", Money(r.DividendIncome, currency))
	fmt.Fprintf(&b, "| Open Positions | %d |\n", r.OpenPositions)
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Trades\n\n")
	fmt.Fprintln(&b, "| | Count | Share | Avg Hold |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	fmt.Fprintf(&b, "| Total | %d | | %s |\n", r.TotalTrades, days(r.AvgHoldDays))
	fmt.Fprintf(&b, "| Long | %d | | |\n", r.LongTrades)
	fmt.Fprintf(&b, "| Short | %d | | |\n", r.ShortTrades)
	fmt.Fprintf(&b, "| Winners | %d | %s | %s |\n", r.Winners, Percent(r.WinPercent), days(r.AvgWinnerHoldDays))
	fmt.Fprintf(&b, "| Losers | %d | %s | %s |\n", r.Losers, Percent(r.LossPercent), days(r.AvgLoserHoldDays))
	fmt.Fprintf(&b, "| Breakeven | %d | %s | |\n", r.Breakeven, Percent(r.BreakevenPercent))
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Risk\n\n")
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Avg Gain | %s |\n", SignedPercent(r.AvgGainPercent))
	fmt.Fprintf(&b, "| Avg Loss | %s |\n", SignedPercent(r.AvgLossPercent))
	fmt.Fprintf(&b, "| Gross Profit | %s |\n", Money(r.GrossProfit, currency))
	fmt.Fprintf(&b, "| Gross Loss | %s |\n", Money(r.GrossLoss, currency))
	fmt.Fprintf(&b, "| Gain/Loss Ratio | %s |\n", Ratio(r.GainLossRatio))
	fmt.Fprintf(&b, "| Risk/Reward Ratio | %s |\n", Ratio(r.RiskRewardRatio))
	fmt.Fprintf(&b, "| Profit Factor | %s |\n", Ratio(r.ProfitFactor))
	fmt.Fprintf(&b, "| Sortino Ratio | %s |\n", Ratio(r.SortinoRatio))
	fmt.Fprintf(&b, "| Avg Position Size | %s |\n", Percent(r.AvgPositionSize))
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Biggest Movers\n\n")
		if r.BiggestWinner != nil {
			fmt.Fprintf(w, "- Winner: **%s** %s\n", r.BiggestWinner.Symbol, SignedMoney(r.BiggestWinner.PnL, currency))
		}
		if r.BiggestLoser != nil {
			fmt.Fprintf(w, "- Loser: **%s** %s\n", r.BiggestLoser.Symbol, SignedMoney(r.BiggestLoser.PnL, currency))
		}
		fmt.Fprintln(w)
		return r.BiggestWinner != nil || r.BiggestLoser != nil
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		d := r.ReturnDistribution
		fmt.Fprint(w, "## Return Distribution\n\n")
		fmt.Fprintf(w, "Median: %s\n\n", SignedPercent(d.Median))
		fmt.Fprintln(w, "| Range | Trades | |")
		fmt.Fprintln(w, "|:---|---:|:---|")
		for i, bin := range d.Bins {
			bar := strings.Repeat("#", bin.Count)
			if i == d.MedianBin {
				bar += " (median)"
			}
			fmt.Fprintf(w, "| %s | %d | %s |\n", bin.Label, bin.Count, bar)
		}
		fmt.Fprintln(w)
		return len(d.Bins) > 0
	})

	return b.String()
}

// ValueHistoryMarkdown renders the end of day values of the portfolio.
func ValueHistoryMarkdown(values []folio.ValuePoint, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Value History\n\n")
	if len(values) == 0 {
		fmt.Fprint(&b, "No transactions.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Value | Change |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	var previous float64
	for i, v := range values {
		change := "-"
		if i > 0 {
			change = SignedMoney(v.Value-previous, currency)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", v.Date, Money(v.Value, currency), change)
		previous = v.Value
	}
	return b.String()
}

// ClosedPositionsMarkdown renders realized round trips, oldest exit first.
func ClosedPositionsMarkdown(closed []folio.ClosedPosition, currency string) string {
	sorted := slices.Clone(closed)
	slices.SortStableFunc(sorted, func(a, b folio.ClosedPosition) int { return a.ExitDate.Compare(b.ExitDate) })

	var b strings.Builder
	fmt.Fprint(&b, "# Closed Positions\n\n")
	if len(sorted) == 0 {
		fmt.Fprint(&b, "No closed position.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Symbol | Side | Entry | Exit | Shares | Entry Price | Exit Price | P/L | P/L % | Days |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, c := range sorted {
		side := "Long"
		if c.IsShort {
			side = "Short"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %d |\n",
			c.Symbol, side, c.EntryDate, c.ExitDate, Shares(c.Shares),
			Money(c.EntryPrice, currency), Money(c.ExitPrice, currency),
			SignedMoney(c.PnL, currency), SignedPercent(c.PnLPercent), c.HoldDays,
		)
	}
	return b.String()
}

// OpenLotsMarkdown renders the lots still open and the closing shares that
// found no lot.
func OpenLotsMarkdown(match folio.MatchResult, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Open Lots\n\n")

	symbols := make([]string, 0, len(match.Open))
	for s := range match.Open {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)

	if len(symbols) == 0 {
		fmt.Fprint(&b, "No open lot.\n\n")
	} else {
		fmt.Fprintln(&b, "| Symbol | Side | Opened | Shares | Price | Cost |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
		for _, s := range symbols {
			for _, l := range match.Open[s] {
				side := "Long"
				if l.IsShort {
					side = "Short"
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
					s, side, l.OpenDate, Shares(l.Shares), Money(l.Price, currency), Money(l.Shares*l.Price, currency))
			}
		}
		fmt.Fprintln(&b)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Unmatched Closes\n\n")
		fmt.Fprintln(w, "| Symbol | Date | Shares |")
		fmt.Fprintln(w, "|:---|:---|---:|")
		for _, u := range match.Unmatched {
			fmt.Fprintf(w, "| %s | %s | %s |\n", u.Symbol, u.Date, Shares(u.Shares))
		}
		return len(match.Unmatched) > 0
	})
	return b.String()
}

// DividendsMarkdown renders synthesized dividend transactions.
func DividendsMarkdown(dividends []folio.Transaction, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Dividends\n\n")
	if len(dividends) == 0 {
		fmt.Fprint(&b, "No dividend.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Symbol | Shares | Per Share | Total |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	var total float64
	for _, d := range dividends {
		perShare := "-"
		if d.PricePerShare != nil {
			perShare = Money(*d.PricePerShare, currency)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", d.Date, d.Instrument, Shares(d.SharesOrZero()), perShare, Money(d.Total, currency))
		total += d.Total
	}
	fmt.Fprintf(&b, "| **Total** | | | | **%s** |\n", Money(total, currency))
	return b.String()
}
