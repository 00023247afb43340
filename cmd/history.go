package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "end of day value history of the portfolio" }
func (*historyCmd) Usage() string {
	return `fstat history

  Prints the value of the portfolio at the end of every day with a transaction.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.ValueHistoryMarkdown(folio.ReplayValues(txs), a.cfg.Currency))
	return subcommands.ExitSuccess
}
