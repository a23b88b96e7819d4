package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	fiberadapter "github.com/lumenapp/server/adapters/fiber"
	"github.com/lumenapp/server/adapters/gemini"
	"github.com/lumenapp/server/adapters/google"
	"github.com/lumenapp/server/adapters/mongo"
	"github.com/lumenapp/server/adapters/notify"
	"github.com/lumenapp/server/adapters/postgres"
	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
	"github.com/lumenapp/server/services"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if cfg.Debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config, log zerolog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := services.NewSessionIssuer(cfg.JWTSecret, services.DefaultSessionTTL, clockwork.NewRealClock())
	if err != nil {
		return fmt.Errorf("failed to create session issuer: %w", err)
	}

	passwords := crypto.NewArgon2()
	phones := core.PhoneNormalizer{CountryPrefix: cfg.PhoneCountryPrefix}
	otps := services.NewOtpManager(store, passwords, clockwork.NewRealClock())

	notifier, err := notify.NewSender(notify.Config{
		SMTPHost:         cfg.SMTPHost,
		SMTPPort:         cfg.SMTPPort,
		SMTPUsername:     cfg.SMTPUsername,
		SMTPPassword:     cfg.SMTPPassword,
		EmailFrom:        cfg.EmailFrom,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		SMSFrom:          cfg.SMSFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}

	var generator core.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create gemini client: %w", err)
		}
		generator = client
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, content generation disabled")
	}

	svcs := fiberadapter.Services{
		Auth:      services.NewAuthService(store, passwords, sessions, phones, log),
		Reset:     services.NewResetService(store, passwords, otps, notifier, phones, log),
		Federated: services.NewFederatedService(store, google.NewVerifier(cfg.GoogleClientID), sessions, passwords, phones, log),
		Content:   services.NewContentService(store, generator, log),
		Sessions:  sessions,
	}

	app := fiber.New()
	fiberadapter.New(app, svcs, fiberadapter.Options{
		ExposeResetCode: cfg.ExposeResetCode,
		Logger:          log,
	}).RegisterRoutes()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server listening")
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func openStore(ctx context.Context, cfg config, log zerolog.Logger) (core.Store, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		adapter := postgres.New(pool)
		if err := adapter.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("connected to postgres")
		return adapter, pool.Close, nil
	default:
		client, err := mongodriver.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		store := mongo.New(client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongo")
		closer := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return store, closer, nil
	}
}
