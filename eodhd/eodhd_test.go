package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `[
  {"date":"2024-02-09","declarationDate":"2024-02-01","recordDate":"2024-02-12","paymentDate":"2024-02-15","period":"Quarterly","value":0.24,"unadjustedValue":0.24,"currency":"USD"},
  {"date":"2024-05-10","paymentDate":null,"value":"0.25","currency":"USD"},
  {"date":"2024-08-09","paymentDate":"2024-08-15","value":null,"currency":"USD"}
]`

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/div/AAPL.US" || r.URL.Query().Get("api_token") != "secret" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Dividends(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c := NewClient("secret", WithBaseURL(srv.URL+"/"))

	want := []folio.DividendPayment{
		{Date: date.New(2024, 2, 15), Amount: 0.24},
		{Date: date.New(2024, 5, 10), Amount: 0.25},
	}

	testCases := []struct {
		name   string
		symbol string
	}{
		{"bare symbol defaults to US", "AAPL"},
		{"full ticker", "AAPL.US"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Dividends(context.Background(), tc.symbol)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestClient_Dividends_HTTPError(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c := NewClient("wrong", WithBaseURL(srv.URL))

	_, err := c.Dividends(context.Background(), "AAPL.US")
	assert.ErrorContains(t, err, "404")
}

func TestClient_DailyCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c := NewClient("secret", WithBaseURL(srv.URL), WithDailyCache(t.TempDir()))

	for range 3 {
		got, err := c.Dividends(context.Background(), "AAPL.US")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestParseDividends(t *testing.T) {
	testCases := []struct {
		name string
		jobj any
		want []folio.DividendPayment
	}{
		{
			name: "empty",
			jobj: []any{},
			want: []folio.DividendPayment{},
		},
		{
			name: "ex date fallback",
			jobj: []any{map[string]any{"date": "2023-11-10", "value": 0.24}},
			want: []folio.DividendPayment{{Date: date.New(2023, 11, 10), Amount: 0.24}},
		},
		{
			name: "no date",
			jobj: []any{
				map[string]any{"value": 0.24},
				map[string]any{"paymentDate": "2024-02-15", "value": 0.24},
			},
			want: []folio.DividendPayment{{Date: date.New(2024, 2, 15), Amount: 0.24}},
		},
		{
			name: "bad value",
			jobj: []any{
				map[string]any{"paymentDate": "2024-02-15", "value": 0.24},
				map[string]any{"paymentDate": "2024-05-16", "value": "0.25"},
				map[string]any{"paymentDate": "2024-08-15", "value": nil},
				map[string]any{"date": "2023-11-10", "value": "abc"},
			},
			want: []folio.DividendPayment{
				{Date: date.New(2024, 2, 15), Amount: 0.24},
				{Date: date.New(2024, 5, 16), Amount: 0.25},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDividends(tc.jobj, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClient_OptionsKeepSharedClient(t *testing.T) {
	shared := &http.Client{}
	c := NewClient("secret",
		WithHTTPClient(shared),
		WithTimeout(5*time.Second),
		WithDailyCache(t.TempDir()),
	)

	assert.Zero(t, shared.Timeout)
	assert.Nil(t, shared.Transport)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.IsType(t, &diskCache{}, c.http.Transport)
}
