package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// SiteEnv is the per-site block of the environment.
type SiteEnv struct {
	Name    string  `envconfig:"NAME"`
	DSN     string  `envconfig:"DSN"`
	Target  float64 `envconfig:"TARGET"`
	Expense float64 `envconfig:"EXPENSE"`
}

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppTimezone       string        `envconfig:"APP_TIMEZONE" default:"Asia/Kolkata"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	PGMaxConns  int32  `envconfig:"PG_MAX_CONNS" default:"4"`

	SiteA SiteEnv `envconfig:"SITE_A"`
	SiteB SiteEnv `envconfig:"SITE_B"`

	MarginTable        map[string]float64 `envconfig:"MARGIN_TABLE"`
	MarginDefault      float64            `envconfig:"MARGIN_DEFAULT" default:"0.3"`
	AdjustmentCategory string             `envconfig:"ADJUSTMENT_CATEGORY" default:"Cake"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"30s"`

	PollEnabled  bool          `envconfig:"POLL_ENABLED" default:"true"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"10s"`
	AlertLocale  string        `envconfig:"ALERT_LOCALE" default:"en-IN"`
}

// LoadConfig reads configuration from the environment, after loading a .env
// file from the working directory when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	defaults := sales.DefaultBusinessConfig().Sites
	cfg.SiteA.applyDefaults(defaults[0])
	cfg.SiteB.applyDefaults(defaults[1])

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.SiteA.DSN == "" || cfg.SiteB.DSN == "" {
			return nil, errors.New("SITE_A_DSN and SITE_B_DSN must be provided for the postgres store driver")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("POLL_INTERVAL must be positive")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.Business(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *SiteEnv) applyDefaults(def sales.SiteConfig) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.Target == 0 {
		s.Target = def.Target
	}
	if s.Expense == 0 {
		s.Expense = def.FixedExpense
	}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location resolves APP_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

// Sites returns both site blocks in display order.
func (c *Config) Sites() []SiteEnv {
	return []SiteEnv{c.SiteA, c.SiteB}
}

// Business assembles and validates the constants the sales service runs with.
func (c *Config) Business() (sales.BusinessConfig, error) {
	biz := sales.DefaultBusinessConfig()
	biz.Sites = []sales.SiteConfig{
		{Name: c.SiteA.Name, Target: c.SiteA.Target, FixedExpense: c.SiteA.Expense},
		{Name: c.SiteB.Name, Target: c.SiteB.Target, FixedExpense: c.SiteB.Expense},
	}
	biz.Margins.Default = c.MarginDefault
	biz.Margins = biz.Margins.With(c.MarginTable)
	biz.AdjustmentCategory = strings.TrimSpace(c.AdjustmentCategory)
	if err := biz.Validate(); err != nil {
		return sales.BusinessConfig{}, err
	}
	return biz, nil
}
