package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// LedgerFile stores a portfolio as a JSONL ledger file, and its last report
// as a JSON file.
type LedgerFile struct {
	Path       string // Path is the JSONL ledger.
	ReportPath string // ReportPath is where SaveReport writes, no report is saved when empty.
}

// Transactions decodes the ledger. A missing ledger is an empty portfolio.
func (l LedgerFile) Transactions(ctx context.Context) ([]Transaction, error) {
	f, err := os.Open(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", l.Path, err)
	}
	defer f.Close()

	txs, err := DecodeTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %q: %w", l.Path, err)
	}
	return txs, nil
}

// ReplaceDividends rewrites the ledger without its dividends, followed by the
// given ones.
func (l LedgerFile) ReplaceDividends(ctx context.Context, dividends []Transaction) error {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return err
	}
	txs = append(WithoutDividends(txs), dividends...)

	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		return err
	}
	return writeFile(l.Path, buf.Bytes())
}

// SaveReport writes the report as indented JSON.
func (l LedgerFile) SaveReport(ctx context.Context, report Report) error {
	if l.ReportPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return writeFile(l.ReportPath, append(data, '\n'))
}

// writeFile replaces the content of a file through a temporary file, so that
// readers never see a partial ledger.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file for %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot replace %q: %w", path, err)
	}
	return nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.Mutex
	txs    []Transaction
	report *Report
}

// NewMemoryStore creates a store holding txs.
func NewMemoryStore(txs ...Transaction) *MemoryStore {
	return &MemoryStore{txs: slices.Clone(txs)}
}

func (m *MemoryStore) Transactions(context.Context) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.txs), nil
}

func (m *MemoryStore) ReplaceDividends(_ context.Context, dividends []Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(WithoutDividends(m.txs), dividends...)
	return nil
}

func (m *MemoryStore) SaveReport(_ context.Context, report Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.report = &report
	return nil
}

// Report returns the last saved report, or nil.
func (m *MemoryStore) Report() *Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}
