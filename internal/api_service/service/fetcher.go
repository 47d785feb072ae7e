package service

import (
	"cloud.google.com/go/civil"
	"context"
	"github.com/langowen/currency-archive/internal/entities"
)

//go:generate mockgen -source=fetcher.go -destination=mocks/fetcher.go -package=mocks

// DayFetcher returns the supported-currency records of one calendar day.
// An empty result means the source has nothing for that day.
type DayFetcher interface {
	FetchDay(ctx context.Context, date civil.Date) ([]entities.ExchangeRate, error)
}
