package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// dividendsCmd holds the flags for the 'dividends' subcommand.
type dividendsCmd struct {
	dryRun bool
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "synthesize dividend transactions in the ledger" }
func (*dividendsCmd) Usage() string {
	return `fstat dividends [-dry-run]

  Looks up the dividend history of every traded instrument and replaces the
  dividend transactions of the ledger with the ones earned by its trades.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the dividends without updating the ledger")
}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	txs, err := a.store.Transactions(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading ledger %q: %v\n", a.cfg.LedgerFile, err)
		return subcommands.ExitFailure
	}
	e, done := a.engine(ctx)
	defer done()
	trades := folio.WithoutDividends(txs)
	dividends := e.ComputeDividends(ctx, folio.Instruments(trades), trades)

	if !c.dryRun {
		if err := a.store.ReplaceDividends(ctx, dividends); err != nil {
			fmt.Fprintf(stderr, "Error updating ledger %q: %v\n", a.cfg.LedgerFile, err)
			return subcommands.ExitFailure
		}
		a.logger.Info().Int("dividends", len(dividends)).Str("ledger", a.cfg.LedgerFile).Msg("ledger updated")
	}

	printMarkdown(renderer.DividendsMarkdown(dividends, a.cfg.Currency))
	return subcommands.ExitSuccess
}
