// Package folio is a portfolio accounting engine. From an unordered set of
// trade and cash transactions it reconstructs a chronological ledger and
// derives performance statistics.
//
// The engine is made of stateless parts:
//   - Dividend Resolver: looks up the dividend payments of instruments through
//     an injected DividendSource and optional DividendCache.
//   - Dividend Injector: replays the trades of each instrument and synthesizes
//     Dividend transactions for the shares held long on each payment date.
//   - Ledger Replayer: replays all transactions to compute holdings, cash and
//     the end of day value of the portfolio.
//   - Lot Matcher: matches closing trades against opening lots, first in first
//     out, for long and short positions, into closed positions.
//   - Statistics Aggregator: turns closed positions and the value history into
//     a Report (win rate, profit factor, Sortino ratio, return distribution...).
//
// Engine.ComputeDividends and Engine.ComputeStatistics are the entry points,
// Refresh chains them over a Store.
//
// Nothing is fetched, cached or persisted by the computations themselves:
// every I/O goes through the interfaces given to the Engine.
package folio
