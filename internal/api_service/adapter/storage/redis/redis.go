package redis

import (
	"context"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"log/slog"
	"time"
)

const BackfilledChannel = "rates_backfilled"

type Storage struct {
	rdb *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		rdb: client,
	}
}

func InitStorage(ctx context.Context, options *redis.Options) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, errors.Wrap(err, op)
	}

	storage := NewStorage(redisClient)

	return storage, nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}

// BackfillEvent is published after a backfill persisted new days.
type BackfillEvent struct {
	From string `msgpack:"from"`
	To   string `msgpack:"to"`
	Days int    `msgpack:"days"`
	At   int64  `msgpack:"at"`
}

func (s *Storage) PublishBackfilled(ctx context.Context, dates entities.DateRange, days int) error {
	const op = "storage.redis.PublishBackfilled"

	payload, err := msgpack.Marshal(BackfillEvent{
		From: entities.FormatDate(dates.Start),
		To:   entities.FormatDate(dates.End),
		Days: days,
		At:   time.Now().Unix(),
	})
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err = s.rdb.Publish(ctx, BackfilledChannel, payload).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	slog.Debug("Published backfill event", "range", dates.String(), "days", days)

	return nil
}

func DecodeBackfillEvent(payload string) (BackfillEvent, error) {
	var event BackfillEvent
	err := msgpack.Unmarshal([]byte(payload), &event)
	return event, err
}

// ListenBackfilled calls handle for every backfill event until ctx is done.
func (s *Storage) ListenBackfilled(ctx context.Context, handle func(BackfillEvent)) error {
	const op = "storage.redis.ListenBackfilled"

	sub := s.rdb.Subscribe(ctx, BackfilledChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, op)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			event, err := DecodeBackfillEvent(msg.Payload)
			if err != nil {
				slog.Warn("Skipping malformed backfill event", "op", op, "error", err)
				continue
			}

			handle(event)
		}
	}
}
