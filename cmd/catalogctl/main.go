// Command catalogctl upserts notification types from a JSON file.
//
//	catalogctl -file catalog.json
//
// The file holds an array of objects:
//
//	[{"key": "weekly_digest", "descriptions": {"en": "Weekly digest"},
//	  "is_active": true, "is_deprecated": false, "deprecated_reason": null}]
//
// Database settings come from the same environment variables as the server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/notification-preferences/internal/config"
	"github.com/iliyamo/notification-preferences/internal/database"
	"github.com/iliyamo/notification-preferences/internal/i18n"
	"github.com/iliyamo/notification-preferences/internal/logger"
	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/repository"
)

type entry struct {
	Key              string    `json:"key"`
	Descriptions     i18n.Text `json:"descriptions"`
	IsActive         *bool     `json:"is_active"`
	IsDeprecated     bool      `json:"is_deprecated"`
	DeprecatedReason i18n.Text `json:"deprecated_reason"`
}

// upserter is implemented by repository.NotificationTypeRepo.
type upserter interface {
	Upsert(ctx context.Context, n *model.NotificationType) error
}

func main() {
	file := flag.String("file", "", "path to the catalog JSON file (- for stdin)")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	types, err := readCatalog(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read catalog")
	}
	if *dryRun {
		log.Info().Int("types", len(types)).Msg("catalog is valid")
		return
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := apply(ctx, repository.NewNotificationTypeRepo(db), types, log); err != nil {
		log.Fatal().Err(err).Msg("upsert catalog")
	}
}

func readCatalog(path string) ([]model.NotificationType, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseCatalog(r)
}

// parseCatalog decodes and validates every entry; all invalid entries are
// reported together.  is_active defaults to true.
func parseCatalog(r io.Reader) ([]model.NotificationType, error) {
	var entries []entry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var errs []error
	seen := map[string]bool{}
	out := make([]model.NotificationType, 0, len(entries))
	for i, e := range entries {
		n := model.NotificationType{
			Key:              e.Key,
			Descriptions:     e.Descriptions,
			IsActive:         e.IsActive == nil || *e.IsActive,
			IsDeprecated:     e.IsDeprecated,
			DeprecatedReason: e.DeprecatedReason,
		}
		if err := n.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%q): %w", i, e.Key, err))
			continue
		}
		if seen[n.Key] {
			errs = append(errs, fmt.Errorf("entry %d: duplicate key %q", i, n.Key))
			continue
		}
		seen[n.Key] = true
		out = append(out, n)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func apply(ctx context.Context, repo upserter, types []model.NotificationType, log zerolog.Logger) error {
	for i := range types {
		if err := repo.Upsert(ctx, &types[i]); err != nil {
			return fmt.Errorf("%s: %w", types[i].Key, err)
		}
		log.Info().Str("key", types[i].Key).Uint64("id", types[i].ID).Msg("notification type upserted")
	}
	return nil
}
