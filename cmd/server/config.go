package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	Addr  string `env:"ADDR" envDefault:":8000"`
	Debug bool   `env:"DEBUG"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"lumen"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	JWTSecret          string `env:"JWT_SECRET,required"`
	PhoneCountryPrefix string `env:"PHONE_COUNTRY_PREFIX" envDefault:"+91"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailFrom    string `env:"EMAIL_FROM"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	SMSFrom          string `env:"TWILIO_FROM_NUMBER"`

	// ExposeResetCode echoes reset codes in HTTP responses. Development
	// convenience only.
	ExposeResetCode bool `env:"EXPOSE_RESET_CODE"`
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := env.ParseAs[config]()
	if err != nil {
		return config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.StoreDriver {
	case "mongo", "postgres":
	default:
		return config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == "postgres" && cfg.PostgresDSN == "" {
		return config{}, errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")
	}
	return cfg, nil
}
