package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/notifier"
	"github.com/vasapolrittideah/property-listing-api/shared/auth"
	"github.com/vasapolrittideah/property-listing-api/shared/cache"
	"github.com/vasapolrittideah/property-listing-api/shared/database"
	"github.com/vasapolrittideah/property-listing-api/shared/mailer"
)

const EnvDevelopment = "development"

// ListingServiceConfig holds every setting of the listing service.
type ListingServiceConfig struct {
	AppEnv          string        `env:"APP_ENV"           envDefault:"development"`
	HTTPAddr        string        `env:"HTTP_ADDR"         envDefault:":3000"`
	LogLevel        string        `env:"LOG_LEVEL"         envDefault:"info"`
	UploadDir       string        `env:"UPLOAD_DIR"        envDefault:"uploads"`
	ListingCacheTTL time.Duration `env:"LISTING_CACHE_TTL" envDefault:"5m"`
	GRPCHealthAddr  string        `env:"GRPC_HEALTH_ADDR"`
	EventsMaxLen    int64         `env:"EVENTS_MAXLEN"     envDefault:"10000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"  envDefault:"30s"`

	Mongo database.MongoConfig `envPrefix:"MONGODB_"`
	Redis cache.RedisConfig    `envPrefix:"REDIS_"`
	JWT   auth.Config          `envPrefix:"JWT_"`
	SMS   notifier.SMSConfig   `envPrefix:"SMS_LOCAL_"`
	SMTP  mailer.Config        `envPrefix:"SMTP_"`
}

// NewListingServiceConfig parses the environment and exits on invalid settings.
func NewListingServiceConfig(logger *zerolog.Logger) *ListingServiceConfig {
	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	return cfg
}

// Load parses and validates the configuration from environment variables.
func Load() (*ListingServiceConfig, error) {
	cfg, err := env.ParseAs[ListingServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ListingServiceConfig) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *ListingServiceConfig) validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("missing HTTP_ADDR environment variable")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGODB_URI environment variable")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("missing MONGODB_DATABASE environment variable")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("missing UPLOAD_DIR environment variable")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.ListingCacheTTL < 0 {
		return fmt.Errorf("LISTING_CACHE_TTL must not be negative")
	}
	if c.SMTP.Enabled() {
		if err := c.SMTP.Validate(); err != nil {
			return err
		}
	}
	if !c.IsDevelopment() && c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes outside development")
	}

	return nil
}
