package fetcher

import (
	"context"
	"github.com/langowen/currency-archive/internal/entities"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

type RatesService interface {
	GetForPeriod(ctx context.Context, period, currency string) ([]entities.ExchangeRate, error)
}
