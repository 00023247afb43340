package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// statsCmd holds the flags for the 'stats' subcommand.
type statsCmd struct {
	json    bool
	refresh bool
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "portfolio performance statistics" }
func (*statsCmd) Usage() string {
	return `fstat stats [-json] [-refresh]

  Replays the ledger and prints the performance statistics of the portfolio.

  With -refresh, dividends are synthesized first, the ledger is updated and
  the report is saved to the configured report file.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
	f.BoolVar(&c.refresh, "refresh", false, "Recompute dividends, update the ledger and save the report")
}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	var report folio.Report
	if c.refresh {
		e, done := a.engine(ctx)
		defer done()
		report, err = folio.Refresh(ctx, e, a.store, a.cfg.BaseValue, a.cfg.Cash)
		if err != nil {
			fmt.Fprintf(stderr, "Error refreshing %q: %v\n", a.cfg.LedgerFile, err)
			return subcommands.ExitFailure
		}
	} else {
		txs, err := a.store.Transactions(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading ledger %q: %v\n", a.cfg.LedgerFile, err)
			return subcommands.ExitFailure
		}
		e := folio.NewEngine(folio.NoDividends{}, folio.WithLogger(a.logger))
		report = e.ComputeStatistics(txs, a.cfg.BaseValue, a.cfg.Cash)
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.ReportMarkdown(report, a.cfg.Currency))
	return subcommands.ExitSuccess
}
