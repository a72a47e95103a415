// Package store holds the draft and submission persistence backends used by
// the wizard, the review workers and portalctl.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"admission-portal/internal/common/validation"
	"admission-portal/internal/models"
)

// SubmissionRepository is the read and review side of submission storage.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) (string, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	UpdateStatus(ctx context.Context, change models.StatusChange) (*models.Submission, error)
	Stats(ctx context.Context) (models.SubmissionStats, error)
}

// DraftReader is the part of a draft store the applications list needs.
type DraftReader interface {
	Load(ctx context.Context, userKey string) (*models.Draft, error)
}

func encodeRecord(rec models.ApplicationRecord) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode application record: %w", err)
	}
	return b, nil
}

// decodeRecord rejects stored payloads that no longer match the record schema
// instead of handing a half-populated record to the wizard.
func decodeRecord(payload []byte) (models.ApplicationRecord, error) {
	if err := validation.ValidateDraftPayload(payload); err != nil {
		return models.ApplicationRecord{}, err
	}
	var rec models.ApplicationRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("decode application record: %w", err)
	}
	return rec, nil
}

func applyDefaultLimit(f models.SubmissionFilter) models.SubmissionFilter {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
