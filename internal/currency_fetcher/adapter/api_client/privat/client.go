package privat

import (
	"cloud.google.com/go/civil"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/langowen/currency-archive/internal/metrics"
	"github.com/shopspring/decimal"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const DefaultURL = "https://api.privatbank.ua/p24api/exchange_rates?json"

type Options struct {
	URL       string
	Timeout   time.Duration
	Attempts  int
	RetryWait time.Duration
}

// Client reads one day of the PrivatBank exchange rate archive per request.
type Client struct {
	http      *resty.Client
	url       string
	supported entities.CurrencySet
	metrics   *metrics.Metrics
}

func NewClient(opts Options, supported entities.CurrencySet, m *metrics.Metrics) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.Attempts - 1).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryWait).
		AddRetryCondition(retryable)

	return &Client{
		http:      httpClient,
		url:       opts.URL,
		supported: supported,
		metrics:   m,
	}
}

// retryable lets transport failures and 5xx through to another attempt. 4xx are final.
func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
}

type daySheet struct {
	Date            string      `json:"date"`
	Bank            string      `json:"bank"`
	BaseCurrencyLit string      `json:"baseCurrencyLit"`
	ExchangeRate    []rateEntry `json:"exchangeRate"`
}

type rateEntry struct {
	BaseCurrency   string              `json:"baseCurrency"`
	Currency       string              `json:"currency"`
	SaleRateNB     decimal.NullDecimal `json:"saleRateNB"`
	PurchaseRateNB decimal.NullDecimal `json:"purchaseRateNB"`
	SaleRate       decimal.NullDecimal `json:"saleRate"`
	PurchaseRate   decimal.NullDecimal `json:"purchaseRate"`
}

func (c *Client) FetchDay(ctx context.Context, date civil.Date) ([]entities.ExchangeRate, error) {
	const op = "api_client.privat.FetchDay"

	day := entities.FormatDate(date)
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("date", day).
		Get(c.url)
	if err != nil {
		if isTimeout(err) {
			c.metrics.ObserveUpstream("timeout", time.Since(start))
			slog.Warn("upstream request timed out", "op", op, "date", day, "error", err)
			return nil, fmt.Errorf("%s: %w: %w: %v", op, entities.ErrUpstream, entities.ErrUpstreamTimeout, err)
		}
		c.metrics.ObserveUpstream("transport_error", time.Since(start))
		return nil, fmt.Errorf("%s: %w: %v", op, entities.ErrUpstream, err)
	}

	if resp.IsError() {
		outcome := "client_error"
		if resp.StatusCode() >= http.StatusInternalServerError {
			outcome = "server_error"
		}
		c.metrics.ObserveUpstream(outcome, time.Since(start))
		slog.Warn("upstream responded with error",
			"op", op,
			"date", day,
			"status", resp.StatusCode(),
			"attempts", resp.Request.Attempt,
		)
		return nil, fmt.Errorf("%s: %w", op, &entities.StatusError{Code: resp.StatusCode()})
	}

	rates, err := c.parse(date, resp.Body())
	if err != nil {
		c.metrics.ObserveUpstream("parse_error", time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	outcome := "ok"
	if len(rates) == 0 {
		outcome = "empty"
	}
	c.metrics.ObserveUpstream(outcome, time.Since(start))
	slog.Debug("day sheet fetched", "date", day, "rates", len(rates), "attempts", resp.Request.Attempt)

	return rates, nil
}

func (c *Client) parse(date civil.Date, body []byte) ([]entities.ExchangeRate, error) {
	var sheet daySheet
	if err := json.Unmarshal(body, &sheet); err != nil {
		return nil, fmt.Errorf("%w: day sheet body: %v", entities.ErrParsing, err)
	}

	if sheet.Date != "" {
		sheetDate, err := entities.ParseDate(sheet.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: day sheet date %q", entities.ErrParsing, sheet.Date)
		}
		if sheetDate != date {
			slog.Warn("upstream answered for another day", "requested", entities.FormatDate(date), "answered", sheet.Date)
		}
	}

	var rates []entities.ExchangeRate
	for _, entry := range sheet.ExchangeRate {
		if !c.supported.Contains(entry.Currency) {
			continue
		}

		sale, purchase, ok := entry.rates()
		if !ok {
			slog.Warn("day sheet entry has no rates", "date", entities.FormatDate(date), "currency", entry.Currency)
			continue
		}

		rates = append(rates, entities.NewRate(date, entry.Currency, sale, purchase))
	}

	return rates, nil
}

// rates prefers the commercial rates and falls back to the national bank ones.
func (e rateEntry) rates() (sale, purchase decimal.Decimal, ok bool) {
	if e.SaleRate.Valid && e.PurchaseRate.Valid {
		return e.SaleRate.Decimal, e.PurchaseRate.Decimal, true
	}
	if e.SaleRateNB.Valid && e.PurchaseRateNB.Valid {
		return e.SaleRateNB.Decimal, e.PurchaseRateNB.Decimal, true
	}
	return decimal.Decimal{}, decimal.Decimal{}, false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
