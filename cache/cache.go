// Package cache provides dividend caches to put in front of a dividend source.
//
// Both implementations satisfy folio.DividendCache: Memory lives as long as
// the process, Redis is shared between processes.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/vmihailenco/msgpack/v5"
)

// Memory is an in-process cache. Entries expire after TTL, never when TTL is 0.
type Memory struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	payments []folio.DividendPayment
	expires  time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

var _ folio.DividendCache = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, symbol string) ([]folio.DividendPayment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[symbol]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, symbol)
		return nil, false, nil
	}
	return append([]folio.DividendPayment(nil), e.payments...), true, nil
}

func (m *Memory) Put(_ context.Context, symbol string, payments []folio.DividendPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entry{payments: append([]folio.DividendPayment(nil), payments...)}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[symbol] = e
	return nil
}

// wirePayment is the msgpack form of a payment.
type wirePayment struct {
	Date   string  `msgpack:"d"`
	Amount float64 `msgpack:"a"`
}

// encode serializes payments with msgpack.
func encode(payments []folio.DividendPayment) ([]byte, error) {
	wire := make([]wirePayment, len(payments))
	for i, p := range payments {
		wire[i] = wirePayment{Date: p.Date.String(), Amount: p.Amount}
	}
	return msgpack.Marshal(wire)
}

// decode is the reverse of encode.
func decode(data []byte) ([]folio.DividendPayment, error) {
	var wire []wirePayment
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	payments := make([]folio.DividendPayment, 0, len(wire))
	for _, w := range wire {
		on, err := date.Parse(w.Date)
		if err != nil {
			return nil, err
		}
		payments = append(payments, folio.DividendPayment{Date: on, Amount: w.Amount})
	}
	return payments, nil
}
