package folio

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := LedgerFile{
		Path:       filepath.Join(dir, "ledger.jsonl"),
		ReportPath: filepath.Join(dir, "report.json"),
	}

	txs, err := store.Transactions(ctx)
	require.NoError(t, err, "a missing ledger is empty")
	assert.Empty(t, txs)

	d := date.New(2025, 6, 1)
	ledger := `{"date":"2025-06-01","action":"CashDeposit","total":500}
{"date":"2025-06-01","instrument":"A","action":"Buy","shares":5,"pricePerShare":10,"total":50}
{"date":"2025-06-03","instrument":"A","action":"Dividend","shares":5,"total":1}
`
	require.NoError(t, os.WriteFile(store.Path, []byte(ledger), 0o644))

	div := Transaction{ID: "d1", Date: d.Add(1), Instrument: "A", Action: Dividend, Shares: ptr(5.0), PricePerShare: ptr(0.5), Total: 2.5}
	require.NoError(t, store.ReplaceDividends(ctx, []Transaction{div}))

	txs, err = store.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, CashDeposit, txs[0].Action)
	assert.Equal(t, Buy, txs[1].Action)
	assert.Equal(t, div, txs[2])

	report := NewReport(ReplayValues(txs), MatchLots(txs), txs, 500, 502.5)
	require.NoError(t, store.SaveReport(ctx, report))

	data, err := os.ReadFile(store.ReportPath)
	require.NoError(t, err)
	var saved Report
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, report, saved)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files are cleaned up")
}

func TestLedgerFile_NoReportPath(t *testing.T) {
	store := LedgerFile{Path: filepath.Join(t.TempDir(), "ledger.jsonl")}
	assert.NoError(t, store.SaveReport(context.Background(), Report{}))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	d := date.New(2025, 1, 1)
	s := NewMemoryStore(NewDeposit(d, 1), Transaction{Date: d, Instrument: "A", Action: Dividend, Shares: ptr(1.0), Total: 1})

	require.NoError(t, s.ReplaceDividends(ctx, nil))
	txs, err := s.Transactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Transaction{NewDeposit(d, 1)}, txs)

	// returned slices are copies
	txs[0].Total = 99
	again, _ := s.Transactions(ctx)
	assert.Equal(t, 1.0, again[0].Total)
	assert.Nil(t, s.Report())
}
