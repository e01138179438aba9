package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"eventsphere"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Empty disables domain event publishing.
	RabbitURL string `env:"RABBITMQ_URL"`

	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	UploadDir   string   `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicURL   string   `env:"PUBLIC_URL"`
	CORSOrigins []string `env:"CLIENT_URL" envSeparator:","`

	// When set, cosmetic edits (poster, images, agenda) of an approved event
	// keep its approval instead of sending it back to review.
	KeepApprovalOnCosmeticEdit bool `env:"KEEP_APPROVAL_ON_COSMETIC_EDIT" envDefault:"false"`

	SweepSchedule    string        `env:"SWEEP_SCHEDULE" envDefault:"*/5 * * * *"`
	ReminderSchedule string        `env:"REMINDER_SCHEDULE" envDefault:"0 * * * *"`
	ReminderWindow   time.Duration `env:"REMINDER_WINDOW" envDefault:"24h"`

	AdminName     string `env:"ADMIN_NAME" envDefault:"Admin"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@eventsphere.local"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
