package postgres

import (
	"cloud.google.com/go/civil"
	"context"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"log/slog"
	"time"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

type PoolOptions struct {
	MaxConns int32
	MinConns int32
	Timeout  time.Duration
}

type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

func InitStorage(ctx context.Context, dsn string, opts PoolOptions) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = opts.MaxConns
	poolConfig.MinConns = opts.MinConns
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	storageBD := NewStorage(pool)

	if err = storageBD.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	slog.Info("PostgresSQL storage initialized successfully")
	return storageBD, nil
}

func (s *Storage) InitSchema(ctx context.Context) error {
	const op = "storage.postgres.InitSchema"

	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS exchange_rates (
			id            UUID PRIMARY KEY,
			date          DATE          NOT NULL,
			currency      VARCHAR(3)    NOT NULL,
			sale_rate     NUMERIC(12,5) NOT NULL,
			purchase_rate NUMERIC(12,5) NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(err, op)
	}

	_, err = s.db.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS exchange_rates_date_currency_idx
		ON exchange_rates (date, currency)
	`)
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Close() {
	s.db.Close()
}

func (s *Storage) FindByDate(ctx context.Context, date civil.Date) ([]entities.ExchangeRate, error) {
	const op = "storage.postgres.FindByDate"

	rows, err := s.db.Query(ctx, `
		SELECT id::text, date, currency, sale_rate::text, purchase_rate::text
		FROM exchange_rates
		WHERE date = $1
		ORDER BY currency
	`, date.In(time.UTC))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	rates, err := scanRates(rows)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return rates, nil
}

func (s *Storage) FindByRangeAndCurrency(ctx context.Context, dates entities.DateRange, filter entities.CurrencyFilter) ([]entities.ExchangeRate, error) {
	const op = "storage.postgres.FindByRangeAndCurrency"

	rows, err := s.db.Query(ctx, `
		SELECT id::text, date, currency, sale_rate::text, purchase_rate::text
		FROM exchange_rates
		WHERE date BETWEEN $1 AND $2 AND currency = ANY($3)
		ORDER BY date, currency
	`, dates.Start.In(time.UTC), dates.End.In(time.UTC), filter.Codes())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	rates, err := scanRates(rows)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return rates, nil
}

// SaveRate upserts on (date, currency); the id of an existing row is kept.
func (s *Storage) SaveRate(ctx context.Context, rate entities.ExchangeRate) error {
	const op = "storage.postgres.SaveRate"

	id := rate.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO exchange_rates (id, date, currency, sale_rate, purchase_rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date, currency)
		DO UPDATE SET sale_rate = EXCLUDED.sale_rate, purchase_rate = EXCLUDED.purchase_rate
	`, id.String(), rate.Date.In(time.UTC), rate.Currency, rate.SaleRate.String(), rate.PurchaseRate.String())
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func scanRates(rows pgx.Rows) ([]entities.ExchangeRate, error) {
	defer rows.Close()

	var rates []entities.ExchangeRate

	for rows.Next() {
		var (
			id, currency, sale, purchase string
			date                         time.Time
		)

		if err := rows.Scan(&id, &date, &currency, &sale, &purchase); err != nil {
			return nil, err
		}

		rate, err := newRate(id, date, currency, sale, purchase)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rates, nil
}

func newRate(id string, date time.Time, currency, sale, purchase string) (entities.ExchangeRate, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return entities.ExchangeRate{}, err
	}

	saleRate, err := decimal.NewFromString(sale)
	if err != nil {
		return entities.ExchangeRate{}, err
	}

	purchaseRate, err := decimal.NewFromString(purchase)
	if err != nil {
		return entities.ExchangeRate{}, err
	}

	return entities.ExchangeRate{
		ID:           parsedID,
		Date:         civil.DateOf(date),
		Currency:     currency,
		SaleRate:     saleRate,
		PurchaseRate: purchaseRate,
	}, nil
}
