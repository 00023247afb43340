package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	closed bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "open lots and closed positions (FIFO)" }
func (*lotsCmd) Usage() string {
	return `fstat lots [-closed]

  Matches closing trades against opening lots, first in first out, and prints
  the lots still open. Closing shares without an open lot are listed too.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.closed, "closed", false, "Also print the closed positions")
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	match := folio.NewEngine(folio.NoDividends{}, folio.WithLogger(a.logger)).MatchLots(txs)
	md := renderer.OpenLotsMarkdown(match, a.cfg.Currency)
	if c.closed {
		md += "\n" + renderer.ClosedPositionsMarkdown(match.Closed, a.cfg.Currency)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
