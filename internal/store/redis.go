package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"admission-portal/internal/models"
	"admission-portal/internal/wizard"
)

const (
	draftUserKeyPrefix = "draft:user:"
	draftIDKeyPrefix   = "draft:id:"
	applicationIDKey   = "application-id:"
)

// draftEnvelope is the stored JSON form of a draft. The record stays raw so
// it can be checked against the record schema before decoding.
type draftEnvelope struct {
	ID                   string                 `json:"id"`
	UserKey              string                 `json:"userKey"`
	ApplicationType      models.ApplicationType `json:"applicationType"`
	Record               json.RawMessage        `json:"record"`
	CompletionPercentage int                    `json:"completionPercentage"`
	ProgramTitle         string                 `json:"programTitle"`
	ProgramSlug          string                 `json:"programSlug"`
	Faculty              string                 `json:"faculty"`
	LastSavedAt          time.Time              `json:"lastSavedAt"`
}

func (e draftEnvelope) draft() (*models.Draft, error) {
	rec, err := decodeRecord(e.Record)
	if err != nil {
		return nil, err
	}
	return &models.Draft{
		ID:                   e.ID,
		UserKey:              e.UserKey,
		ApplicationType:      e.ApplicationType,
		Record:               rec,
		CompletionPercentage: e.CompletionPercentage,
		ProgramTitle:         e.ProgramTitle,
		ProgramSlug:          e.ProgramSlug,
		Faculty:              e.Faculty,
		LastSavedAt:          e.LastSavedAt,
	}, nil
}

// RedisDraftStore keeps one draft per user under draft:user:<key>, plus a
// draft:id:<id> pointer for lookups by id. Both expire after ttl.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore returns a store; a zero ttl keeps drafts forever.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (s *RedisDraftStore) Save(ctx context.Context, d *models.Draft) error {
	rec, err := encodeRecord(d.Record)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(draftEnvelope{
		ID:                   d.ID,
		UserKey:              d.UserKey,
		ApplicationType:      d.ApplicationType,
		Record:               rec,
		CompletionPercentage: d.CompletionPercentage,
		ProgramTitle:         d.ProgramTitle,
		ProgramSlug:          d.ProgramSlug,
		Faculty:              d.Faculty,
		LastSavedAt:          d.LastSavedAt,
	})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, draftUserKeyPrefix+d.UserKey, payload, s.ttl)
		pipe.Set(ctx, draftIDKeyPrefix+d.ID, d.UserKey, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save draft %s: %w", d.ID, err)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, userKey string) (*models.Draft, error) {
	payload, err := s.client.Get(ctx, draftUserKeyPrefix+userKey).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var env draftEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return env.draft()
}

// LoadByID follows the id pointer. A pointer left behind by an overwritten
// draft resolves to nothing.
func (s *RedisDraftStore) LoadByID(ctx context.Context, draftID string) (*models.Draft, error) {
	userKey, err := s.client.Get(ctx, draftIDKeyPrefix+draftID).Result()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve draft %s: %w", draftID, err)
	}
	d, err := s.Load(ctx, userKey)
	if err != nil || d == nil {
		return d, err
	}
	if d.ID != draftID {
		return nil, nil
	}
	return d, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, userKey string) error {
	d, err := s.Load(ctx, userKey)
	if err != nil {
		// unreadable drafts are still removed
		d = nil
	}
	keys := []string{draftUserKeyPrefix + userKey}
	if d != nil {
		keys = append(keys, draftIDKeyPrefix+d.ID)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// RedisIDGenerator draws application id sequence numbers from an INCR
// counter per year, so ids stay unique across processes.
type RedisIDGenerator struct {
	client *redis.Client
	prefix string
}

func NewRedisIDGenerator(client *redis.Client, prefix string) *RedisIDGenerator {
	return &RedisIDGenerator{client: client, prefix: prefix}
}

func (g *RedisIDGenerator) NextApplicationID(ctx context.Context, year int) (string, error) {
	seq, err := g.client.Incr(ctx, fmt.Sprintf("%s%d", applicationIDKey, year)).Result()
	if err != nil {
		return "", fmt.Errorf("next application id: %w", err)
	}
	return wizard.FormatApplicationID(g.prefix, year, seq), nil
}
