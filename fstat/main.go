// Command fstat synthesizes dividends and computes performance statistics of
// a portfolio ledger.
//
// Shell completion is installed with:
//
//	COMP_INSTALL=1 fstat
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/folio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Sub: map[string]*complete.Command{
		"dividends": {Flags: map[string]complete.Predictor{"dry-run": predict.Nothing}},
		"stats":     {Flags: map[string]complete.Predictor{"json": predict.Nothing, "refresh": predict.Nothing}},
		"history":   {},
		"lots":      {Flags: map[string]complete.Predictor{"closed": predict.Nothing}},
		"help":      {Args: predict.Set{"dividends", "stats", "history", "lots", "topic"}},
		"topic":     {Args: predict.Set{"readme", "ledger", "dividends", "statistics", "config"}},
		"commands":  {},
		"flags":     {},
	},
	Flags: map[string]complete.Predictor{
		"config": predict.Files("*.toml"),
		"raw":    predict.Nothing,
	},
}

func main() {
	completion.Complete("fstat")

	commander := subcommands.NewCommander(flag.CommandLine, "fstat")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
