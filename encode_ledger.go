package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeTransactions decodes transactions from a stream of JSONL data, one
// transaction per line. Empty lines are ignored. The input order is kept: it
// is the tie-break order of same day transactions.
//
// Decoding only checks the JSON syntax, transactions missing required fields
// are returned as is and skipped later by the engine.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(strings.TrimSpace(string(lineBytes))) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("parse error on line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return txs, nil
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeTransactions reorders transactions chronologically and writes them in
// JSONL format. The sort is stable, so transactions on the same day keep their
// relative order.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range Sorted(txs) {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
