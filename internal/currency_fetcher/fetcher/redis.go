package fetcher

import (
	"context"
	"github.com/langowen/currency-archive/internal/api_service/adapter/storage/redis"
)

type EventSource interface {
	ListenBackfilled(ctx context.Context, handle func(redis.BackfillEvent)) error
}
