// Package eodhd is a dividend source backed by the EODHD financial API.
//
// See https://eodhd.com/financial-apis/api-splits-dividends for the payload.
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the root of the EODHD API.
const DefaultBaseURL = "https://eodhd.com/api"

// Client fetches dividend histories. It implements folio.DividendSource.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the http client used for requests. The client is
// copied, later options never modify h.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		cp := *h
		c.http = &cp
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDailyCache keeps responses in dir until the end of the day, so that the
// API is queried at most once a day per symbol.
func WithDailyCache(dir string) Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = &diskCache{base: base, dir: dir, logger: c.logger}
	}
}

// NewClient creates a client using apiKey. Options are applied in order.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ folio.DividendSource = (*Client)(nil)

// Dividends returns the dividend history of symbol, an EODHD ticker like
// "AAPL.US". A symbol without exchange suffix is queried on the US exchange.
//
// Payments are dated on their payment date, or on the ex-dividend date when
// the payment date is unknown.
func (c *Client) Dividends(ctx context.Context, symbol string) ([]folio.DividendPayment, error) {
	// https://eodhd.com/api/div/AAPL.US?fmt=json&api_token=demo
	// [
	//   {
	//     "date": "2024-02-09",
	//     "declarationDate": "2024-02-01",
	//     "recordDate": "2024-02-12",
	//     "paymentDate": "2024-02-15",
	//     "period": "Quarterly",
	//     "value": 0.24,
	//     "unadjustedValue": 0.24,
	//     "currency": "USD"
	//   },
	ticker := symbol
	if !strings.Contains(ticker, ".") {
		ticker += ".US"
	}
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.apiKey)
	addr := fmt.Sprintf("%s/div/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return nil, fmt.Errorf("cannot fetch dividends of %q: %w", symbol, err)
	}
	return parseDividends(jobj, c.logger.With().Str("symbol", symbol).Logger())
}

// parseDividends extracts payments from a decoded /div payload. Records
// without a usable date or value are skipped.
func parseDividends(jobj any, logger zerolog.Logger) ([]folio.DividendPayment, error) {
	jitems, err := jsonpath.Get("$[*]", jobj)
	if err != nil {
		return nil, fmt.Errorf("unexpected dividend payload: %w", err)
	}
	items, ok := jitems.([]any)
	if !ok && jitems != nil {
		return nil, fmt.Errorf("unexpected dividend payload: %T", jitems)
	}

	payments := make([]folio.DividendPayment, 0, len(items))
	for i, item := range items {
		on, err := itemDate(item)
		if err != nil {
			logger.Debug().Int("index", i).Err(err).Msg("skip dividend record")
			continue
		}
		amount, err := itemValue(item)
		if err != nil {
			logger.Debug().Int("index", i).Err(err).Msg("skip dividend record")
			continue
		}
		payments = append(payments, folio.DividendPayment{Date: on, Amount: amount})
	}
	return payments, nil
}

func itemDate(item any) (date.Date, error) {
	for _, path := range []string{"$.paymentDate", "$.date"} {
		jval, err := jsonpath.Get(path, item)
		if err != nil {
			continue
		}
		s, ok := jval.(string)
		if !ok || s == "" {
			continue
		}
		return date.Parse(s)
	}
	return date.Date{}, fmt.Errorf("no date")
}

func itemValue(item any) (float64, error) {
	jval, err := jsonpath.Get("$.value", item)
	if err != nil {
		return 0, fmt.Errorf("no value: %w", err)
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q: %w", v, err)
		}
		return d.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("invalid value %v", jval)
	}
}
