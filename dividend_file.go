package folio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/folio/date"
)

// DividendFile is a DividendSource reading a JSONL file of payments:
//
//	{"symbol":"AAPL","date":"2025-05-15","amount":0.26}
//
// The file is read on every lookup, it is meant for offline use and tests.
type DividendFile string

// Dividends returns the payments of symbol listed in the file.
func (f DividendFile) Dividends(ctx context.Context, symbol string) ([]DividendPayment, error) {
	r, err := os.Open(string(f))
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", string(f), err)
	}
	defer r.Close()

	all, err := DecodeDividends(r)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %q: %w", string(f), err)
	}
	return all[symbol], nil
}

// DecodeDividends decodes a JSONL stream of payments into payments per symbol.
func DecodeDividends(r io.Reader) (map[string][]DividendPayment, error) {
	type jpayment struct {
		Symbol string    `json:"symbol"`
		Date   date.Date `json:"date"`
		Amount float64   `json:"amount"`
	}

	payments := make(map[string][]DividendPayment)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if len(strings.TrimSpace(scanner.Text())) == 0 {
			continue
		}
		var jp jpayment
		if err := json.Unmarshal(scanner.Bytes(), &jp); err != nil {
			return nil, fmt.Errorf("parse error on line %d: %w", line, err)
		}
		if jp.Symbol == "" {
			return nil, fmt.Errorf("parse error on line %d: missing symbol", line)
		}
		payments[jp.Symbol] = append(payments[jp.Symbol], DividendPayment{Date: jp.Date, Amount: jp.Amount})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return payments, nil
}
