package store

import (
	"context"
	"fmt"
	"time"

	"admission-portal/internal/common/config"
	"admission-portal/internal/common/database"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/wizard"
)

// Backends bundles the stores selected by the storage section of the config.
type Backends struct {
	Drafts      wizard.DraftStore
	Submissions SubmissionRepository
	IDs         wizard.IDGenerator
	// Index is nil when Elasticsearch is not configured.
	Index *SubmissionIndex

	Postgres *database.PostgresClient
	Redis    *database.RedisClient

	closers []func() error
}

// Open connects every backend the config asks for and runs migrations when
// Postgres is in use.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backends, error) {
	b := &Backends{}
	prefix := wizard.PolicyFromConfig(cfg.Wizard).ApplicationIDPrefix

	if cfg.UsesPostgres() {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		b.Postgres = pg
		b.closers = append(b.closers, pg.Close)
		if err := pg.Ping(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := Migrate(ctx, pg.DB); err != nil {
			b.Close()
			return nil, err
		}
	}

	if cfg.UsesRedis() {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Redis = rc
		b.closers = append(b.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			b.Close()
			return nil, err
		}
	}

	switch cfg.Storage.Drafts {
	case config.BackendPostgres:
		b.Drafts = NewPostgresDraftStore(b.Postgres.DB)
	case config.BackendRedis:
		b.Drafts = NewRedisDraftStore(b.Redis.Client, time.Duration(cfg.Storage.DraftTTLHours)*time.Hour)
	default:
		b.Drafts = NewMemoryDraftStore()
	}

	switch cfg.Storage.Submissions {
	case config.BackendPostgres:
		b.Submissions = NewPostgresSubmissionStore(b.Postgres.DB, log)
	default:
		b.Submissions = NewMemorySubmissionStore()
	}

	switch cfg.Storage.ApplicationID {
	case config.BackendRedis:
		b.IDs = NewRedisIDGenerator(b.Redis.Client, prefix)
	default:
		b.IDs = wizard.NewMemoryIDGenerator(prefix)
	}

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			b.Close()
			return nil, err
		}
		index := cfg.Database.Elasticsearch.SubmissionsIndex
		if err := es.EnsureIndex(ctx, index, SubmissionsIndexMapping); err != nil {
			log.Warn("Search index unavailable, continuing without it", map[string]interface{}{
				"index": index,
				"error": err,
			})
		} else {
			b.Index = NewSubmissionIndex(es.Client, index)
		}
	}

	log.Info("Storage backends ready", map[string]interface{}{
		"drafts":         cfg.Storage.Drafts,
		"submissions":    cfg.Storage.Submissions,
		"application_id": cfg.Storage.ApplicationID,
		"search":         b.Index != nil,
	})
	return b, nil
}

func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
	b.closers = nil
}
