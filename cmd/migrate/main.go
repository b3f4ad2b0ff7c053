package main

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/config"
	"stealthcompany.com/patients/internal/couchbase"
	"stealthcompany.com/patients/internal/patient"
	"stealthcompany.com/patients/internal/store"
	"stealthcompany.com/patients/pkg/zerolog_config"
)

// migrate copies the JSON file collection into the Couchbase document,
// holding the migration lock so the API refuses writes meanwhile.
func main() {
	config.LoadDotEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog_config.SetAppPrefix("patients-migrate")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("source", cfg.DataFile).
		Str("bucket", cfg.Couchbase.Bucket).
		Str("document", cfg.Couchbase.DocumentID).
		Msg("Starting patients-migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbClient, err := couchbase.NewClient(cfg.Couchbase, "patients-migrate")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Couchbase")
	}
	defer dbClient.Close()

	locker := dbClient.GetLocker()

	log.Info().Msg("Locking database for migration")
	if err := locker.Lock(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to lock database")
	}

	count, skipped, err := migrate(ctx, store.NewFileStore(cfg.DataFile), dbClient.Store())

	log.Info().Msg("Unlocking database after migration")
	if unlockErr := locker.Unlock(context.Background()); unlockErr != nil {
		log.Error().Err(unlockErr).Msg("Failed to unlock database")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	if len(skipped) > 0 {
		log.Warn().
			Strs("skipped", skipped).
			Msg("Invalid records were left out of the migration")
	}
	log.Info().
		Int("records", count).
		Int("skipped", len(skipped)).
		Msg("Migration completed successfully")
}

// migrate copies every valid record from src to dst. Records that fail
// validation are left behind and their IDs returned in sorted order, since
// the service never writes such a record itself.
func migrate(ctx context.Context, src, dst store.Store) (int, []string, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return 0, nil, err
	}

	valid := make(map[string]patient.Record, len(records))
	var skipped []string
	for id, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Warn().
				Err(err).
				Str("id", id).
				Msg("Skipping record that fails validation")
			skipped = append(skipped, id)
			continue
		}
		valid[id] = rec
	}
	slices.Sort(skipped)

	if err := dst.Save(ctx, valid); err != nil {
		return 0, nil, err
	}
	return len(valid), skipped, nil
}
