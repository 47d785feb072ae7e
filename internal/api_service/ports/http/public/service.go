package public

import (
	"context"
	"github.com/langowen/currency-archive/internal/entities"
)

type Service interface {
	GetForDay(ctx context.Context, date string) ([]entities.ExchangeRate, error)
	GetForRange(ctx context.Context, start, end, currency string) ([]entities.ExchangeRate, error)
	GetForPeriod(ctx context.Context, period, currency string) ([]entities.ExchangeRate, error)
}
