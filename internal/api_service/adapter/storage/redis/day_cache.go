package redis

import (
	"cloud.google.com/go/civil"
	"context"
	"github.com/langowen/currency-archive/internal/api_service/service"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/langowen/currency-archive/internal/metrics"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
	"log/slog"
	"time"
)

type cachedRate struct {
	Currency string `msgpack:"c"`
	Sale     string `msgpack:"s"`
	Purchase string `msgpack:"p"`
}

// DayCache keeps upstream day sheets in Redis in front of another DayFetcher.
// Empty sheets are kept for emptyTTL only, so a day that is not published yet is asked again soon.
type DayCache struct {
	storage  *Storage
	next     service.DayFetcher
	dayTTL   time.Duration
	emptyTTL time.Duration
	metrics  *metrics.Metrics
}

func NewDayCache(storage *Storage, next service.DayFetcher, dayTTL, emptyTTL time.Duration, m *metrics.Metrics) *DayCache {
	return &DayCache{
		storage:  storage,
		next:     next,
		dayTTL:   dayTTL,
		emptyTTL: emptyTTL,
		metrics:  m,
	}
}

func DayKey(date civil.Date) string {
	return "rates:day:" + date.String()
}

func (c *DayCache) FetchDay(ctx context.Context, date civil.Date) ([]entities.ExchangeRate, error) {
	rates, found, err := c.storage.getDay(ctx, date)
	switch {
	case err != nil:
		c.metrics.DayCache("error")
		slog.Warn("day cache read failed", "date", entities.FormatDate(date), "error", err)
	case found:
		c.metrics.DayCache("hit")
		return rates, nil
	default:
		c.metrics.DayCache("miss")
	}

	rates, err = c.next.FetchDay(ctx, date)
	if err != nil {
		return nil, err
	}

	ttl := c.dayTTL
	if len(rates) == 0 {
		ttl = c.emptyTTL
	}
	if ttl > 0 {
		if err := c.storage.setDay(ctx, date, rates, ttl); err != nil {
			slog.Warn("day cache write failed", "date", entities.FormatDate(date), "error", err)
		}
	}

	return rates, nil
}

func (s *Storage) getDay(ctx context.Context, date civil.Date) ([]entities.ExchangeRate, bool, error) {
	const op = "storage.redis.getDay"

	payload, err := s.rdb.Get(ctx, DayKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, op)
	}

	var cached []cachedRate
	if err = msgpack.Unmarshal(payload, &cached); err != nil {
		return nil, false, errors.Wrap(err, op)
	}

	rates := make([]entities.ExchangeRate, 0, len(cached))
	for _, item := range cached {
		sale, err := decimal.NewFromString(item.Sale)
		if err != nil {
			return nil, false, errors.Wrap(err, op)
		}
		purchase, err := decimal.NewFromString(item.Purchase)
		if err != nil {
			return nil, false, errors.Wrap(err, op)
		}
		rates = append(rates, entities.NewRate(date, item.Currency, sale, purchase))
	}

	return rates, true, nil
}

func (s *Storage) setDay(ctx context.Context, date civil.Date, rates []entities.ExchangeRate, ttl time.Duration) error {
	const op = "storage.redis.setDay"

	cached := make([]cachedRate, 0, len(rates))
	for _, rate := range rates {
		cached = append(cached, cachedRate{
			Currency: rate.Currency,
			Sale:     rate.SaleRate.String(),
			Purchase: rate.PurchaseRate.String(),
		})
	}

	payload, err := msgpack.Marshal(cached)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err = s.rdb.Set(ctx, DayKey(date), payload, ttl).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}
