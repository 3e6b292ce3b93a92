package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pesaflow"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pesaflow"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	}

	Orchestrator struct {
		InitiateTimeout time.Duration `envconfig:"INITIATE_TIMEOUT" default:"30s"`
		MaxAttempts     uint64        `envconfig:"INITIATE_MAX_ATTEMPTS" default:"3"`
		InitialBackoff  time.Duration `envconfig:"INITIATE_BACKOFF" default:"500ms"`
		// TimeoutPolicy is "reconcile" or "fail-fast".
		TimeoutPolicy string `envconfig:"TIMEOUT_POLICY" default:"reconcile"`
	}

	Reconcile struct {
		Enabled        bool          `envconfig:"RECONCILE_ENABLED" default:"true"`
		Interval       time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1m"`
		Grace          time.Duration `envconfig:"RECONCILE_GRACE" default:"30s"`
		PendingTimeout time.Duration `envconfig:"PENDING_TIMEOUT" default:"24h"`
	}

	Adapters struct {
		MpesaCallbackSecret   string `envconfig:"MPESA_CALLBACK_SECRET" default:"dev-mpesa-secret"`
		PaystackWebhookSecret string `envconfig:"PAYSTACK_WEBHOOK_SECRET" default:"dev-paystack-secret"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
