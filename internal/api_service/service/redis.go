package service

import (
	"context"
	"github.com/langowen/currency-archive/internal/entities"
)

// Notifier announces ranges that received new records.
type Notifier interface {
	PublishBackfilled(ctx context.Context, dates entities.DateRange, days int) error
}
