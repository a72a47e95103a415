package store

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
)

// MemoryDraftStore keeps one serialized draft per user. Values are copied
// through JSON so callers never share state with the store.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	byUser map[string][]byte
	byID   map[string]string
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		byUser: make(map[string][]byte),
		byID:   make(map[string]string),
	}
}

func (s *MemoryDraftStore) Save(_ context.Context, d *models.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byUser[d.UserKey]; ok {
		var old models.Draft
		if json.Unmarshal(prev, &old) == nil && old.ID != d.ID {
			delete(s.byID, old.ID)
		}
	}
	s.byUser[d.UserKey] = b
	s.byID[d.ID] = d.UserKey
	return nil
}

func (s *MemoryDraftStore) Load(_ context.Context, userKey string) (*models.Draft, error) {
	s.mu.RLock()
	b, ok := s.byUser[userKey]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var d models.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryDraftStore) LoadByID(ctx context.Context, draftID string) (*models.Draft, error) {
	s.mu.RLock()
	userKey, ok := s.byID[draftID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.Load(ctx, userKey)
}

func (s *MemoryDraftStore) Delete(_ context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.byUser[userKey]; ok {
		var d models.Draft
		if json.Unmarshal(b, &d) == nil {
			delete(s.byID, d.ID)
		}
		delete(s.byUser, userKey)
	}
	return nil
}

// MemorySubmissionStore implements SubmissionRepository in process memory.
type MemorySubmissionStore struct {
	mu      sync.RWMutex
	seq     int
	byID    map[string]*models.Submission
	byAppID map[string]string
	now     func() time.Time
}

func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{
		byID:    make(map[string]*models.Submission),
		byAppID: make(map[string]string),
		now:     time.Now,
	}
}

func copySubmission(sub *models.Submission) *models.Submission {
	c := *sub
	c.Record = sub.Record.Clone()
	if sub.DecisionDate != nil {
		t := *sub.DecisionDate
		c.DecisionDate = &t
	}
	return &c
}

func (s *MemorySubmissionStore) Create(_ context.Context, sub *models.Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAppID[sub.ApplicationID]; exists {
		return "", errors.NewDuplicateApplicationError(sub.ApplicationID)
	}
	s.seq++
	id := strconv.Itoa(s.seq)
	stored := copySubmission(sub)
	stored.ID = id
	s.byID[id] = stored
	s.byAppID[sub.ApplicationID] = id
	return id, nil
}

func (s *MemorySubmissionStore) Get(_ context.Context, id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[id]
	if !ok {
		return nil, errors.NewSubmissionNotFoundError(id)
	}
	return copySubmission(sub), nil
}

func (s *MemorySubmissionStore) GetByApplicationID(ctx context.Context, applicationID string) (*models.Submission, error) {
	s.mu.RLock()
	id, ok := s.byAppID[applicationID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewSubmissionNotFoundError(applicationID)
	}
	return s.Get(ctx, id)
}

// List returns matching submissions, newest first.
func (s *MemorySubmissionStore) List(_ context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	filter = applyDefaultLimit(filter)

	s.mu.RLock()
	var out []*models.Submission
	for _, sub := range s.byID {
		if filter.UserKey != "" && sub.UserKey != filter.UserKey {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		out = append(out, copySubmission(sub))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ApplicationID > out[j].ApplicationID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})

	if filter.Offset >= len(out) {
		return []*models.Submission{}, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemorySubmissionStore) UpdateStatus(_ context.Context, change models.StatusChange) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byAppID[change.ApplicationID]
	if !ok {
		return nil, errors.NewSubmissionNotFoundError(change.ApplicationID)
	}
	sub := s.byID[id]
	if !sub.Status.CanTransition(change.Status) {
		return nil, errors.NewInvalidStatusTransitionError(string(sub.Status), string(change.Status))
	}

	at := change.At
	if at.IsZero() {
		at = s.now().UTC()
	}
	sub.Status = change.Status
	sub.ReviewComments = change.Comments
	sub.ReviewedBy = change.ReviewedBy
	sub.UpdatedAt = at
	if change.Status.IsDecision() {
		sub.DecisionDate = &at
	}
	return copySubmission(sub), nil
}

func (s *MemorySubmissionStore) Stats(_ context.Context) (models.SubmissionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st models.SubmissionStats
	for _, sub := range s.byID {
		st.Total++
		switch sub.Status {
		case models.StatusSubmitted, models.StatusReview:
			st.Pending++
		case models.StatusAccepted:
			st.Accepted++
		case models.StatusRejected:
			st.Rejected++
		}
	}
	return st, nil
}
