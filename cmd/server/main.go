package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/fairshare/internal/auth"
	"github.com/mmynk/fairshare/internal/config"
	"github.com/mmynk/fairshare/internal/ledger"
	"github.com/mmynk/fairshare/internal/metrics"
	"github.com/mmynk/fairshare/internal/server"
	"github.com/mmynk/fairshare/internal/service"
	"github.com/mmynk/fairshare/internal/storage/sqlite"
	"github.com/mmynk/fairshare/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage for accounts and transaction history
	store, err := sqlite.New(cfg.Database.SQLitePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.SQLitePath)

	// Seed the in-memory ledger
	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		slog.Error("Failed to load seed", "error", err)
		os.Exit(1)
	}
	l := ledger.New()
	seed.Apply(l)
	slog.Info("Ledger seeded", "users", len(l.UserKeys()), "groups", len(l.GroupKeys()))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)
	for _, key := range l.GroupKeys() {
		if g := l.Group(key); g != nil {
			coin, reserve := g.Reserves()
			m.SetReserves(g.Key, coin, reserve)
		}
	}

	svc := service.NewLedgerService(l, store, m)

	// Authentication is optional: without a secret the API trusts the actor
	// named in each request, which is how the demo fixture runs.
	var jwtManager *auth.JWTManager
	var authn auth.Authenticator
	if cfg.Auth.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		authn = auth.NewPasswordAuthenticator(store)
		slog.Info("Authentication enabled", "token_ttl", cfg.Auth.TokenTTL)
	} else {
		slog.Warn("Authentication disabled: no JWT secret configured")
	}

	srv := server.New(svc, store, authn, jwtManager, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Wrap with h2c so HTTP/2 clients work without TLS
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
