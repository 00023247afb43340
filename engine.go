package folio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Engine computes synthesized dividends and performance statistics for one
// portfolio at a time.
//
// An Engine holds no state between calls: every computation allocates its own
// holdings and lot queues. It is safe to use concurrently on independent
// portfolios.
type Engine struct {
	resolver *DividendResolver
	logger   zerolog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	cache  DividendCache
	logger zerolog.Logger
}

// WithLogger sets the logger used to report skipped transactions and
// degraded lookups.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithCache sets the cache used in front of the dividend source.
func WithCache(cache DividendCache) Option {
	return func(o *engineOptions) { o.cache = cache }
}

// NewEngine creates an Engine looking up dividends from source.
func NewEngine(source DividendSource, opts ...Option) *Engine {
	o := engineOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		resolver: NewDividendResolver(source, o.cache, o.logger),
		logger:   o.logger,
	}
}

// ComputeDividends resolves the dividends of symbols and synthesizes the
// dividend transactions earned by the trade history.
//
// trades is the non dividend part of the portfolio. Calling it twice with the
// same inputs and the same known payments gives identical results.
func (e *Engine) ComputeDividends(ctx context.Context, symbols []string, trades []Transaction) []Transaction {
	payments := e.resolver.Resolve(ctx, symbols)
	dividends := InjectDividends(WithoutDividends(trades), payments)
	e.logger.Debug().Int("symbols", len(payments)).Int("dividends", len(dividends)).Msg("dividends computed")
	return dividends
}

// ComputeStatistics replays all transactions of a portfolio, dividends
// included, and returns its statistics report.
func (e *Engine) ComputeStatistics(txs []Transaction, baseValue, cash float64) Report {
	history, _ := replay(txs, e.logger)
	match := matchLots(txs, e.logger)
	return NewReport(history, match, txs, baseValue, cash)
}

// MatchLots matches lots like the package level MatchLots, reporting
// skipped trades and unmatched closes to the engine logger.
func (e *Engine) MatchLots(txs []Transaction) MatchResult {
	return matchLots(txs, e.logger)
}

// Store is the persistence collaborator of a single portfolio.
//
// Callers refreshing the same portfolio concurrently must serialize the
// calls: the engine gives no at-most-once guarantee.
type Store interface {
	// Transactions returns every transaction of the portfolio.
	Transactions(ctx context.Context) ([]Transaction, error)
	// ReplaceDividends deletes every dividend transaction of the portfolio and
	// inserts the given ones.
	ReplaceDividends(ctx context.Context, dividends []Transaction) error
	// SaveReport persists the statistics report.
	SaveReport(ctx context.Context, report Report) error
}

// Refresh runs the full pipeline over a store: dividends are recomputed from
// the non dividend transactions and replace the previous ones, then the
// statistics are computed on the updated ledger and saved.
func Refresh(ctx context.Context, e *Engine, store Store, baseValue, cash float64) (Report, error) {
	txs, err := store.Transactions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("could not read transactions: %w", err)
	}
	trades := WithoutDividends(txs)
	dividends := e.ComputeDividends(ctx, Instruments(trades), trades)
	if err := store.ReplaceDividends(ctx, dividends); err != nil {
		return Report{}, fmt.Errorf("could not replace dividends: %w", err)
	}

	txs, err = store.Transactions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("could not read transactions: %w", err)
	}
	report := e.ComputeStatistics(txs, baseValue, cash)
	if err := store.SaveReport(ctx, report); err != nil {
		return Report{}, fmt.Errorf("could not save report: %w", err)
	}
	e.logger.Info().
		Int("transactions", len(txs)).
		Int("dividends", len(dividends)).
		Int("closed", report.TotalTrades).
		Msg("portfolio refreshed")
	return report, nil
}
