package service

import (
	"cloud.google.com/go/civil"
	"context"
	"github.com/langowen/currency-archive/internal/entities"
)

//go:generate mockgen -source=storage.go -destination=mocks/storage.go -package=mocks

type Storage interface {
	FindByDate(ctx context.Context, date civil.Date) ([]entities.ExchangeRate, error)
	FindByRangeAndCurrency(ctx context.Context, dates entities.DateRange, filter entities.CurrencyFilter) ([]entities.ExchangeRate, error)
	SaveRate(ctx context.Context, rate entities.ExchangeRate) error
}
