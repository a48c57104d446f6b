package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disercomi-tramites/internal/adapters/auth/gateway"
	"disercomi-tramites/internal/adapters/registry/xroad"
	pg "disercomi-tramites/internal/adapters/storage/postgres"
	"disercomi-tramites/internal/config"
	"disercomi-tramites/internal/platform/logger"
	"disercomi-tramites/internal/ports/auth"
	"disercomi-tramites/internal/ports/registry"
	"disercomi-tramites/internal/router"
)

// @title DISERCOMI Trámites API
// @version 1.0
// @description API del portal de trámites de DISERCOMI.
func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres connection failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		db = opened
		defer db.Close()
		log.Info("postgres connected", nil)
	} else {
		log.Info("no DB_DSN, using in-memory repositories", nil)
	}

	var verifier auth.AuthVerifier
	if cfg.GatewayURL != "" && cfg.GatewayAPIKey != "" {
		client, err := gateway.NewClient(gateway.Config{
			BaseURL: cfg.GatewayURL,
			APIKey:  cfg.GatewayAPIKey,
		})
		if err != nil {
			log.Error("invalid gateway config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = gateway.NewVerifier(client)
	} else {
		log.Warn("no gateway configured, running in dev auth mode", nil)
	}

	var validator registry.Validator
	if cfg.XRoadURL != "" && cfg.XRoadToken != "" {
		client, err := xroad.NewClient(xroad.Config{
			BaseURL: cfg.XRoadURL,
			Token:   cfg.XRoadToken,
		})
		if err != nil {
			log.Error("invalid xroad config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		validator = client
	}

	handler, cleanup := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Validator:    validator,
		Log:          log,
	})
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err.Error()})
	}
}
