// Package cmd implements the fstat CLI: dividend synthesis and portfolio
// statistics over a JSONL ledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio"
	"github.com/etnz/folio/cache"
	"github.com/etnz/folio/eodhd"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&dividendsCmd{}, "ledger")

	c.Register(&statsCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "fstat.toml", "Path to the configuration file (TOML format)")
var rawOutput = flag.Bool("raw", false, "Print raw markdown instead of rendering it for the terminal")

// stdout and stderr are variables so that tests can capture the output.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app is what every command needs: the configuration, a logger and the
// ledger store.
type app struct {
	cfg    *Config
	logger zerolog.Logger
	store  folio.LedgerFile
}

func newApp() (*app, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: NewLogger(cfg.Logging.Level, stderr),
		store:  folio.LedgerFile{Path: cfg.LedgerFile, ReportPath: cfg.ReportFile},
	}, nil
}

// source selects the dividend source: the dividend file when configured,
// else EODHD when an API key is available, else none.
func (a *app) source() folio.DividendSource {
	switch {
	case a.cfg.DividendsFile != "":
		a.logger.Debug().Str("file", a.cfg.DividendsFile).Msg("dividends from file")
		return folio.DividendFile(a.cfg.DividendsFile)
	case a.cfg.EODHD.APIKey != "":
		a.logger.Debug().Str("url", a.cfg.EODHD.BaseURL).Msg("dividends from eodhd")
		return eodhd.NewClient(a.cfg.EODHD.APIKey,
			eodhd.WithBaseURL(a.cfg.EODHD.BaseURL),
			eodhd.WithTimeout(a.cfg.EODHD.GetTimeout()),
			eodhd.WithLogger(a.logger),
			eodhd.WithDailyCache(os.TempDir()),
		)
	default:
		a.logger.Warn().Msg("no dividend source configured, dividends are ignored")
		return folio.NoDividends{}
	}
}

// cache returns the Redis cache when configured and reachable, the in-process
// cache otherwise. The returned function releases the cache.
func (a *app) cache(ctx context.Context) (folio.DividendCache, func()) {
	ttl := a.cfg.Redis.GetTTL()
	if a.cfg.Redis.Addr == "" {
		return cache.NewMemory(ttl), func() {}
	}
	r, err := cache.NewRedis(ctx, cache.RedisConfig{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		TTL:      ttl,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("redis unavailable, using in-process cache")
		return cache.NewMemory(ttl), func() {}
	}
	return r, func() {
		if err := r.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("cannot close redis cache")
		}
	}
}

// engine returns the engine over the configured dividend source and cache.
// Callers must call the returned function when done.
func (a *app) engine(ctx context.Context) (*folio.Engine, func()) {
	c, closeCache := a.cache(ctx)
	return folio.NewEngine(a.source(), folio.WithLogger(a.logger), folio.WithCache(c)), closeCache
}

// printMarkdown renders markdown for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
