package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"ride-fare-service/internal/adapters/geocode"
	"ride-fare-service/internal/adapters/repositories"
	"ride-fare-service/internal/adapters/rides"
	"ride-fare-service/internal/adapters/sessions"
	"ride-fare-service/internal/api"
	"ride-fare-service/internal/api/handlers"
	"ride-fare-service/internal/config"
	"ride-fare-service/internal/platform/db"
	"ride-fare-service/internal/platform/logger"
	"ride-fare-service/internal/ports"
	"ride-fare-service/internal/services"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sweepInterval = 10 * time.Minute

// main is the application composition root.
// It wires concrete adapters (maps.co, Uber, Ola, Redis, Postgres) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel, "ride-fare")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("session store", zap.Error(err))
	}
	defer closeStore()

	// Sample rides and search history are optional.
	var rideRepo ports.RideRepository
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.HTTPTimeout)
		if err != nil {
			log.Fatal("database", zap.Error(err))
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatal("database schema", zap.Error(err))
		}
		rideRepo = repositories.NewPostgresRideRepository(conn, log.Named("rides"))
		log.Info("ride repository enabled")
	}

	geocoder, err := geocode.NewMapsCoGeocoder(cfg.Geocode.APIKey, cfg.Geocode.BaseURL, cfg.HTTPTimeout, log.Named("geocode"))
	if err != nil {
		log.Fatal("geocoder", zap.Error(err))
	}

	providers, err := buildProviders(cfg, log)
	if err != nil {
		log.Fatal("providers", zap.Error(err))
	}

	var opts []services.AggregatorOption
	if rideRepo != nil {
		opts = append(opts, services.WithSearchRecorder(rideRepo))
	}
	aggregator, err := services.NewAggregator(geocoder, providers, store, log.Named("aggregator"), opts...)
	if err != nil {
		log.Fatal("aggregator", zap.Error(err))
	}

	deps := handlers.Deps{
		Log:       log.Named("http"),
		Sessions:  store,
		Quoter:    aggregator,
		Suggester: geocoder,
		Rides:     rideRepo,
	}
	if cfg.Uber.Enabled() {
		oauth, err := services.NewOAuthService(services.OAuthConfig{
			ClientID:     cfg.Uber.ClientID,
			ClientSecret: cfg.Uber.ClientSecret,
			RedirectURL:  cfg.Uber.RedirectURL,
			AuthURL:      cfg.Uber.AuthURL,
			TokenURL:     cfg.Uber.TokenURL,
		}, &http.Client{Timeout: cfg.HTTPTimeout}, log.Named("oauth"))
		if err != nil {
			log.Fatal("oauth", zap.Error(err))
		}
		deps.Auth = oauth
		deps.AuthProvider = rides.UberName
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.Dependencies{
		Deps:         deps,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		log.Fatal("router", zap.Error(err))
	}

	// Write timeout covers a geocode pair plus the slowest provider call.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3*cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.Strings("providers", aggregator.Providers()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// openSessionStore returns the Redis store when REDIS_URL is set, otherwise an
// in-memory store swept in the background until ctx is done.
func openSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (ports.SessionStore, func(), error) {
	if cfg.RedisURL != "" {
		rdb, err := sessions.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := sessions.NewRedisStore(rdb, cfg.SessionTTL)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		log.Info("sessions in redis")
		return store, func() { _ = rdb.Close() }, nil
	}

	store := sessions.NewMemoryStore(cfg.SessionTTL)
	go func() {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := store.Sweep(); n > 0 {
					log.Debug("expired sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
	log.Info("sessions in memory")
	return store, func() {}, nil
}

// buildProviders registers providers in display order. Uber needs OAuth
// credentials, Ola a partner token; either may be absent.
func buildProviders(cfg *config.Config, log *zap.Logger) ([]ports.PriceProvider, error) {
	var providers []ports.PriceProvider

	if cfg.Uber.Enabled() {
		uber, err := rides.NewUberProvider(cfg.Uber.ClientID, cfg.Uber.APIBaseURL, cfg.HTTPTimeout, log.Named("uber"))
		if err != nil {
			return nil, err
		}
		providers = append(providers, uber)
	}

	if cfg.Ola.Enabled() {
		ola, err := rides.NewOlaProvider(cfg.Ola.PartnerToken, cfg.Ola.APIBaseURL, cfg.HTTPTimeout, log.Named("ola"))
		if err != nil {
			return nil, err
		}
		providers = append(providers, ola)
	}

	if len(providers) == 0 {
		log.Warn("no ride providers configured, results will be empty")
	}
	return providers, nil
}
