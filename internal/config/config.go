package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"subscription-retention-service/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port        int           `yaml:"port"`
	AdminKey    string        `yaml:"admin_key"`    // bearer token for /api/v1/admin
	TokenSecret string        `yaml:"token_secret"` // HMAC secret for storefront anti-forgery tokens
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

type StoreConfig struct {
	// URL points at the WooCommerce store database the subscription plugins
	// write into.
	URL string `yaml:"url"`
	// Backend forces a backend kind instead of probing. "auto" (default)
	// runs detection in priority order.
	Backend string `yaml:"backend"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	ShopURL  string `yaml:"shop_url"` // CTA target in win-back emails
	ShopName string `yaml:"shop_name"`
}

type WorkerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Batch        int           `yaml:"batch"`
}

// RetentionConfig is the operator-facing settings block. Zero values mean
// "use the seeded default" so a partial YAML block behaves like the
// original defaults.
type RetentionConfig struct {
	Enabled            *bool   `yaml:"enabled"`
	OfferPause         *bool   `yaml:"offer_pause"`
	OfferSkip          *bool   `yaml:"offer_skip"`
	SkipCooldownMonths int     `yaml:"skip_cooldown_months"`
	OfferDiscount      *bool   `yaml:"offer_discount"`
	DiscountAmount     float64 `yaml:"discount_amount"`
	DiscountType       string  `yaml:"discount_type"` // percent|fixed
	Headline           string  `yaml:"headline"`
	Subheadline        string  `yaml:"subheadline"`
	WinbackEnabled     *bool   `yaml:"winback_enabled"`
	WinbackSubject     string  `yaml:"winback_subject"`
	WinbackDelayDays   int     `yaml:"winback_delay_days"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Worker    WorkerConfig    `yaml:"worker"`
	Retention RetentionConfig `yaml:"retention"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.TokenTTL <= 0 {
		cfg.HTTP.TokenTTL = 30 * time.Minute
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "auto"
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = time.Minute
	}
	if cfg.Worker.Batch <= 0 {
		cfg.Worker.Batch = 50
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}

	// Minimal validation
	if cfg.Store.URL == "" {
		return nil, errors.New("store.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.HTTP.TokenSecret == "" {
		return nil, errors.New("http.token_secret is required")
	}
	if cfg.Store.Backend != "auto" && !model.BackendKind(cfg.Store.Backend).Valid() {
		return nil, fmt.Errorf("store.backend %q is not a supported backend", cfg.Store.Backend)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Settings materializes the retention settings snapshot, filling anything
// the YAML left unset with the seeded defaults.
func (c *RetentionConfig) Settings() model.RetentionSettings {
	s := model.DefaultRetentionSettings()
	if c.Enabled != nil {
		s.Enabled = *c.Enabled
	}
	if c.OfferPause != nil {
		s.OfferPause = *c.OfferPause
	}
	if c.OfferSkip != nil {
		s.OfferSkip = *c.OfferSkip
	}
	if c.SkipCooldownMonths > 0 {
		s.SkipCooldownMonths = c.SkipCooldownMonths
	}
	if c.OfferDiscount != nil {
		s.OfferDiscount = *c.OfferDiscount
	}
	if c.DiscountAmount > 0 {
		s.DiscountAmount = c.DiscountAmount
	}
	if c.DiscountType != "" {
		s.DiscountType = model.DiscountType(c.DiscountType)
	}
	if c.Headline != "" {
		s.Headline = c.Headline
	}
	if c.Subheadline != "" {
		s.Subheadline = c.Subheadline
	}
	if c.WinbackEnabled != nil {
		s.WinbackEnabled = *c.WinbackEnabled
	}
	if c.WinbackSubject != "" {
		s.WinbackSubject = c.WinbackSubject
	}
	if c.WinbackDelayDays > 0 {
		s.WinbackDelayDays = c.WinbackDelayDays
	}
	return s
}

// Provider adapts RetentionConfig to the SettingsProvider port: one explicit
// object constructed at startup and passed to every component that needs it.
type Provider struct {
	snapshot model.RetentionSettings
}

func NewProvider(c RetentionConfig) *Provider {
	return &Provider{snapshot: c.Settings()}
}

func (p *Provider) Enabled() bool                     { return p.snapshot.Enabled }
func (p *Provider) Snapshot() model.RetentionSettings { return p.snapshot }
