package service

import (
	"cloud.google.com/go/civil"
	"context"
	"errors"
	"fmt"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/langowen/currency-archive/internal/metrics"
	"log/slog"
	"time"
)

const (
	DefaultThrottleDelay = 8 * time.Second
	DefaultFreeFetches   = 2
)

// Service answers rate requests from the store and backfills missing days from the upstream source.
type Service struct {
	storage   Storage
	fetcher   DayFetcher
	supported entities.CurrencySet
	throttler Throttler
	clock     Clock
	notifier  Notifier
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithThrottler(t Throttler) Option {
	return func(s *Service) {
		s.throttler = t
	}
}

func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(storage Storage, fetcher DayFetcher, supported entities.CurrencySet, opts ...Option) (*Service, error) {
	if storage == nil || fetcher == nil {
		return nil, errors.New("service: storage and fetcher are required")
	}
	if len(supported) == 0 {
		return nil, errors.New("service: supported currency set is empty")
	}

	s := &Service{
		storage:   storage,
		fetcher:   fetcher,
		supported: supported,
		clock:     NewClock(time.UTC),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.throttler == nil {
		s.throttler = NewFixedDelay(DefaultThrottleDelay, DefaultFreeFetches, s.metrics)
	}

	return s, nil
}

func (s *Service) Supported() entities.CurrencySet {
	return s.supported
}

// GetForDay returns every stored record of the day, fetching the day sheet when nothing is stored.
func (s *Service) GetForDay(ctx context.Context, date string) ([]entities.ExchangeRate, error) {
	day, err := entities.ParseDate(date)
	if err != nil {
		return nil, err
	}

	stored, err := s.storage.FindByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("find rates for %s: %w", date, err)
	}
	s.metrics.StoreLookup("day", len(stored) > 0)

	if len(stored) > 0 {
		entities.SortRates(stored)
		return stored, nil
	}

	return s.backfill(ctx, []civil.Date{day}, entities.AllCurrencies(s.supported))
}

// GetForRange returns the records of [start, end] for currency, or for all supported currencies when it is empty.
func (s *Service) GetForRange(ctx context.Context, start, end, currency string) ([]entities.ExchangeRate, error) {
	from, err := entities.ParseDate(start)
	if err != nil {
		return nil, err
	}

	to, err := entities.ParseDate(end)
	if err != nil {
		return nil, err
	}

	dates, err := entities.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}

	filter, err := entities.NewCurrencyFilter(s.supported, currency)
	if err != nil {
		return nil, err
	}

	return s.getForRange(ctx, dates, filter)
}

// GetForPeriod resolves a named period against today and returns its records.
func (s *Service) GetForPeriod(ctx context.Context, period, currency string) ([]entities.ExchangeRate, error) {
	filter, err := entities.NewCurrencyFilter(s.supported, currency)
	if err != nil {
		return nil, err
	}

	return s.getForRange(ctx, entities.Period(period).Range(s.clock.Today()), filter)
}

func (s *Service) getForRange(ctx context.Context, dates entities.DateRange, filter entities.CurrencyFilter) ([]entities.ExchangeRate, error) {
	stored, err := s.storage.FindByRangeAndCurrency(ctx, dates, filter)
	if err != nil {
		return nil, fmt.Errorf("find rates for %s: %w", dates, err)
	}

	result := make([]entities.ExchangeRate, 0, len(stored))
	for _, rate := range stored {
		if filter.Match(rate.Currency) {
			result = append(result, rate)
		}
	}

	missing := MissingDays(dates, filter, result)
	s.metrics.StoreLookup("range", len(missing) == 0)

	if len(missing) > 0 {
		fetched, err := s.backfill(ctx, missing, filter)
		if err != nil {
			return nil, err
		}
		result = append(result, fetched...)
	}

	entities.SortRates(result)

	return result, nil
}

// backfill fetches days in order and persists what it gets.
// The first day without data ends the backfill.
func (s *Service) backfill(ctx context.Context, days []civil.Date, filter entities.CurrencyFilter) ([]entities.ExchangeRate, error) {
	total := len(days)
	if total == 0 {
		return nil, nil
	}

	slog.Info("backfill started",
		"from", entities.FormatDate(days[0]),
		"to", entities.FormatDate(days[total-1]),
		"days", total,
		"currency", filter.String(),
	)

	var (
		result    []entities.ExchangeRate
		persisted int
	)

	for i, day := range days {
		if i > 0 {
			if err := s.throttler.BeforeNextFetch(ctx, i, total); err != nil {
				return nil, err
			}
		}

		rates, err := s.fetcher.FetchDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("fetch rates for %s: %w", entities.FormatDate(day), err)
		}

		if len(rates) == 0 {
			s.metrics.BackfillDay("empty")
			slog.Info("no upstream rates for day, backfill stopped",
				"date", entities.FormatDate(day),
				"skipped", total-i-1,
			)
			break
		}
		s.metrics.BackfillDay("fetched")

		for _, rate := range rates {
			if err := s.storage.SaveRate(ctx, rate); err != nil {
				return nil, fmt.Errorf("save %s rate for %s: %w", rate.Currency, entities.FormatDate(rate.Date), err)
			}
			if filter.Match(rate.Currency) {
				result = append(result, rate)
			}
		}
		persisted = i + 1
	}

	slog.Info("backfill finished", "fetched_days", persisted, "records", len(result))

	if persisted > 0 {
		s.notify(ctx, entities.DateRange{Start: days[0], End: days[persisted-1]}, persisted)
	}

	return result, nil
}

func (s *Service) notify(ctx context.Context, dates entities.DateRange, count int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishBackfilled(ctx, dates, count); err != nil {
		slog.Warn("failed to publish backfill notification", "range", dates.String(), "error", err)
	}
}
