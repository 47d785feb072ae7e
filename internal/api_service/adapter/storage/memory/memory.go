package memory

import (
	"cloud.google.com/go/civil"
	"context"
	"github.com/langowen/currency-archive/internal/entities"
	"sync"
)

type key struct {
	date     civil.Date
	currency string
}

// Storage keeps rates in process memory. Used for local runs and tests.
type Storage struct {
	mu    sync.RWMutex
	rates map[key]entities.ExchangeRate
}

func NewStorage() *Storage {
	return &Storage{rates: make(map[key]entities.ExchangeRate)}
}

func (s *Storage) FindByDate(_ context.Context, date civil.Date) ([]entities.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []entities.ExchangeRate
	for k, rate := range s.rates {
		if k.date == date {
			result = append(result, rate)
		}
	}
	entities.SortRates(result)

	return result, nil
}

func (s *Storage) FindByRangeAndCurrency(_ context.Context, dates entities.DateRange, filter entities.CurrencyFilter) ([]entities.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []entities.ExchangeRate
	for k, rate := range s.rates {
		if dates.Contains(k.date) && filter.Match(k.currency) {
			result = append(result, rate)
		}
	}
	entities.SortRates(result)

	return result, nil
}

// SaveRate upserts on (date, currency). The first stored id is kept.
func (s *Storage) SaveRate(_ context.Context, rate entities.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{date: rate.Date, currency: rate.Currency}
	if existing, ok := s.rates[k]; ok {
		rate.ID = existing.ID
	}
	s.rates[k] = rate

	return nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rates)
}
