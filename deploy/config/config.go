package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/langowen/currency-archive/internal/entities"
	"log"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Storage    Storage
	HTTPServer HTTPServer
	Redis      Redis
	Upstream   Upstream
	Rates      Rates
	Throttle   Throttle
	Warmer     Warmer
	Logger     Logger
}

type Storage struct {
	Driver   string        `env:"BD_DRIVER" env-default:"postgres"`
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-default:"localhost"`
	Port     int           `env:"BD_PORT" env-default:"5432"`
	User     string        `env:"BD_USER"`
	Password string        `env:"BD_PASSWORD"`
	DBName   string        `env:"BD_DBNAME"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"public"`
	MaxConns int32         `env:"BD_MAX_CONNS" env-default:"25"`
	MinConns int32         `env:"BD_MIN_CONNS" env-default:"5"`
}

type HTTPServer struct {
	Port         string        `env:"HTTP_PORT" env-default:"8082"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"1h"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Redis struct {
	Enabled     bool          `env:"REDIS_ENABLED" env-default:"false"`
	Host        string        `env:"REDIS_HOST" env-default:"localhost:6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" env-default:"0"`
	DayTTL      time.Duration `env:"REDIS_DAY_TTL" env-default:"720h"`
	EmptyDayTTL time.Duration `env:"REDIS_EMPTY_DAY_TTL" env-default:"10m"`
}

type Upstream struct {
	URL       string        `env:"UPSTREAM_URL" env-default:"https://api.privatbank.ua/p24api/exchange_rates?json"`
	Timeout   time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"20s"`
	Attempts  int           `env:"UPSTREAM_ATTEMPTS" env-default:"3"`
	RetryWait time.Duration `env:"UPSTREAM_RETRY_WAIT" env-default:"200ms"`
}

type Rates struct {
	Supported string `env:"RATES_SUPPORTED_CURRENCIES" env-default:"USD,EUR"`
	Timezone  string `env:"RATES_TIMEZONE" env-default:"Europe/Kyiv"`
}

type Throttle struct {
	Delay       time.Duration `env:"THROTTLE_DELAY" env-default:"8s"`
	FreeFetches int           `env:"THROTTLE_FREE_FETCHES" env-default:"2"`
}

type Warmer struct {
	Schedule   string        `env:"WARMER_SCHEDULE" env-default:"0 30 9 * * *"`
	Period     string        `env:"WARMER_PERIOD" env-default:"week"`
	RunOnStart bool          `env:"WARMER_RUN_ON_START" env-default:"true"`
	Timeout    time.Duration `env:"WARMER_TIMEOUT" env-default:"30m"`
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

func NewConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Error reading env: %v", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.User == "" || c.Storage.DBName == "" {
			return fmt.Errorf("config: BD_USER and BD_DBNAME are required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown BD_DRIVER %q", c.Storage.Driver)
	}

	if len(c.SupportedCurrencies()) == 0 {
		return fmt.Errorf("config: RATES_SUPPORTED_CURRENCIES is empty")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Upstream.Attempts < 1 {
		return fmt.Errorf("config: UPSTREAM_ATTEMPTS must be at least 1")
	}

	return nil
}

func (c *Config) SupportedCurrencies() entities.CurrencySet {
	return entities.NewCurrencySet(strings.Split(c.Rates.Supported, ",")...)
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Rates.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: RATES_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.User,
		c.Storage.Password,
		c.Storage.DBName,
		c.Storage.SSLMode,
		c.Storage.Schema,
	)
}

// LogValue hides credentials when the config is logged at start-up.
func (c Config) LogValue() slog.Value {
	type plain Config
	p := plain(c)
	p.Storage.Password = "***"
	p.Redis.Password = "***"
	return slog.AnyValue(p)
}
