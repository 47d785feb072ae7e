package public

import (
	"cloud.google.com/go/civil"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/langowen/currency-archive/internal/entities"
	"github.com/langowen/currency-archive/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	day    func(ctx context.Context, date string) ([]entities.ExchangeRate, error)
	rng    func(ctx context.Context, start, end, currency string) ([]entities.ExchangeRate, error)
	period func(ctx context.Context, period, currency string) ([]entities.ExchangeRate, error)
}

func (f *fakeService) GetForDay(ctx context.Context, date string) ([]entities.ExchangeRate, error) {
	return f.day(ctx, date)
}

func (f *fakeService) GetForRange(ctx context.Context, start, end, currency string) ([]entities.ExchangeRate, error) {
	return f.rng(ctx, start, end, currency)
}

func (f *fakeService) GetForPeriod(ctx context.Context, period, currency string) ([]entities.ExchangeRate, error) {
	return f.period(ctx, period, currency)
}

var march1 = civil.Date{Year: 2024, Month: time.March, Day: 1}

func sampleRates() []entities.ExchangeRate {
	return []entities.ExchangeRate{
		entities.NewRate(march1, "EUR", decimal.RequireFromString("44.10"), decimal.RequireFromString("43.2")),
		entities.NewRate(march1, "USD", decimal.RequireFromString("41.55"), decimal.RequireFromString("40.95")),
		entities.NewRate(march1.AddDays(1), "USD", decimal.RequireFromString("41.6"), decimal.RequireFromString("41")),
	}
}

func serve(t *testing.T, svc Service, m *metrics.Metrics, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := NewRouter(svc, m, prometheus.NewRegistry())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestGetForDay(t *testing.T) {
	var gotDate string
	svc := &fakeService{day: func(_ context.Context, date string) ([]entities.ExchangeRate, error) {
		gotDate = date
		return sampleRates()[:2], nil
	}}

	rec := serve(t, svc, nil, "/api/currencies/day?date=01.03.2024")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "01.03.2024", gotDate)
	assert.JSONEq(t, `[
		{"date":"01.03.2024","currency":"EUR","saleRate":44.1,"purchaseRate":43.2},
		{"date":"01.03.2024","currency":"USD","saleRate":41.55,"purchaseRate":40.95}
	]`, rec.Body.String())
}

func TestGetForDayEmptyListIsArray(t *testing.T) {
	svc := &fakeService{day: func(context.Context, string) ([]entities.ExchangeRate, error) {
		return nil, nil
	}}

	rec := serve(t, svc, nil, "/api/currencies/day?date=01.03.2024")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetForRangePassesQuery(t *testing.T) {
	var got []string
	svc := &fakeService{rng: func(_ context.Context, start, end, currency string) ([]entities.ExchangeRate, error) {
		got = []string{start, end, currency}
		return sampleRates(), nil
	}}

	rec := serve(t, svc, nil, "/api/currencies/dates?startDate=01.03.2024&endDate=02.03.2024&currency=usd")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"01.03.2024", "02.03.2024", "usd"}, got)

	var body []rateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 3)
}

func TestGetForPeriodRequiresPeriod(t *testing.T) {
	svc := &fakeService{period: func(context.Context, string, string) ([]entities.ExchangeRate, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	for _, target := range []string{"/api/currencies/period", "/api/currencies/period/both_currencies"} {
		rec := serve(t, svc, nil, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.JSONEq(t, `{"error":"period is required"}`, rec.Body.String())
	}
}

func TestGetForPeriod(t *testing.T) {
	var gotPeriod, gotCurrency string
	svc := &fakeService{period: func(_ context.Context, period, currency string) ([]entities.ExchangeRate, error) {
		gotPeriod, gotCurrency = period, currency
		return sampleRates()[1:], nil
	}}

	rec := serve(t, svc, nil, "/api/currencies/period?period=week&currency=USD")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "week", gotPeriod)
	assert.Equal(t, "USD", gotCurrency)
}

func TestGetPeriodByCurrencyGroups(t *testing.T) {
	var gotCurrency = "unset"
	svc := &fakeService{period: func(_ context.Context, _, currency string) ([]entities.ExchangeRate, error) {
		gotCurrency = currency
		return sampleRates(), nil
	}}

	rec := serve(t, svc, nil, "/api/currencies/period/both_currencies?period=month")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", gotCurrency)

	var body map[string][]rateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Len(t, body["EUR"], 1)
	assert.Len(t, body["USD"], 2)
	assert.Equal(t, "02.03.2024", body["USD"][1].Date)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"invalid input", fmt.Errorf("%w: bad date", entities.ErrInvalidInput), http.StatusBadRequest, "invalid input: bad date"},
		{"parsing", fmt.Errorf("%w: body", entities.ErrParsing), http.StatusBadGateway, ""},
		{"upstream timeout", fmt.Errorf("%w: %w", entities.ErrUpstream, entities.ErrUpstreamTimeout), http.StatusGatewayTimeout, ""},
		{"upstream status", &entities.StatusError{Code: 503}, http.StatusServiceUnavailable, ""},
		{"interrupted", entities.ErrInterruptedWait, http.StatusServiceUnavailable, ""},
		{"internal", fmt.Errorf("connection reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{day: func(context.Context, string) ([]entities.ExchangeRate, error) {
				return nil, tt.err
			}}

			rec := serve(t, svc, nil, "/api/currencies/day?date=x")

			assert.Equal(t, tt.code, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := &fakeService{day: func(context.Context, string) ([]entities.ExchangeRate, error) {
		return sampleRates(), nil
	}}
	router := NewRouter(svc, m, reg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/currencies/day?date=01.03.2024", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/currencies/day", "200")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "currency_archive_http_requests_total")
}

func TestUnknownRouteIsCounted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	rec := serve(t, &fakeService{}, m, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestServerHandlersWithoutRouter(t *testing.T) {
	svc := &fakeService{day: func(context.Context, string) ([]entities.ExchangeRate, error) {
		return sampleRates()[:1], nil
	}}

	rec := httptest.NewRecorder()
	NewServer(svc).GetForDay(rec, httptest.NewRequest(http.MethodGet, "/api/currencies/day?date=01.03.2024", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"01.03.2024","currency":"EUR","saleRate":44.1,"purchaseRate":43.2}]`, rec.Body.String())
}
