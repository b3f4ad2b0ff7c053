package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/api"
	"stealthcompany.com/patients/internal/config"
	"stealthcompany.com/patients/internal/couchbase"
	"stealthcompany.com/patients/internal/metrics"
	"stealthcompany.com/patients/internal/orchestrator"
	"stealthcompany.com/patients/internal/records"
	"stealthcompany.com/patients/internal/store"
	"stealthcompany.com/patients/pkg/zerolog_config"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog_config.SetAppPrefix("patients-api")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().Msg("Starting patients-api service")

	signals := orchestrator.NewSignalHandler()
	defer signals.Stop()
	ctx, cancel := signals.Context(context.Background())
	defer cancel()

	metrics.EnableBusinessMetrics(cfg.EnableBusinessMetrics)
	if cfg.EnableSystemMetrics {
		dataFile := ""
		if cfg.StoreBackend == config.BackendFile {
			dataFile = cfg.DataFile
		}
		metrics.StartSystemMetrics(ctx, cfg.SystemMetricsInterval, dataFile)
	}

	recordStore, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open record store")
	}
	defer closeStore()

	handlers := api.NewHandlers(records.NewService(recordStore))
	handler := api.NewServerHandler(handlers)

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.APIPort).
			Str("backend", cfg.StoreBackend).
			Msg("Server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("Failed to start server")
	case <-ctx.Done():
		log.Info().Msg("Shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("API service shutdown complete")
}

// openStore builds the configured record store and its cleanup
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(nil), func() {}, nil
	case config.BackendCouchbase:
		client, err := couchbase.NewClient(cfg.Couchbase, "patients-api")
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			log.Info().Msg("Closing database connection...")
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Couchbase connection")
			}
		}
		return client.Store(), closeFn, nil
	default:
		log.Info().Str("path", cfg.DataFile).Msg("Using JSON file store")
		return store.NewFileStore(cfg.DataFile), func() {}, nil
	}
}
