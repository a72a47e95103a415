package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/metrics"
	"admission-portal/internal/models"
)

// DraftStore persists at most one draft per user key. Load and LoadByID
// return (nil, nil) when nothing is stored.
type DraftStore interface {
	Save(ctx context.Context, draft *models.Draft) error
	Load(ctx context.Context, userKey string) (*models.Draft, error)
	LoadByID(ctx context.Context, draftID string) (*models.Draft, error)
	Delete(ctx context.Context, userKey string) error
}

// SubmissionStore records finalized applications and returns the stored id.
type SubmissionStore interface {
	Create(ctx context.Context, submission *models.Submission) (string, error)
}

// SubmissionHook is notified after a submission has been stored. Hook
// failures never undo the submission.
type SubmissionHook interface {
	SubmissionCreated(ctx context.Context, submission *models.Submission) error
}

// Observer receives timing for wizard operations.
type Observer interface {
	RecordOperation(ctx context.Context, operation, status string, duration time.Duration)
}

type Option func(*Wizard)

func WithPolicy(p Policy) Option { return func(w *Wizard) { w.policy = p } }

func WithLogger(l logger.Logger) Option { return func(w *Wizard) { w.log = l } }

// WithClock replaces time.Now, mainly for age checks and ids in tests.
func WithClock(now func() time.Time) Option { return func(w *Wizard) { w.now = now } }

func WithIDGenerator(g IDGenerator) Option { return func(w *Wizard) { w.ids = g } }

func WithSubmissionHook(h SubmissionHook) Option {
	return func(w *Wizard) { w.hooks = append(w.hooks, h) }
}

func WithObserver(o Observer) Option { return func(w *Wizard) { w.observer = o } }

// Wizard owns one applicant's in-progress record for the length of a
// session. All methods are safe for concurrent use; persistence calls run
// outside the lock so edits are never blocked by a slow store.
type Wizard struct {
	identity    models.Identity
	drafts      DraftStore
	submissions SubmissionStore
	ids         IDGenerator
	hooks       []SubmissionHook
	observer    Observer
	policy      Policy
	log         logger.Logger
	now         func() time.Time

	mu             sync.Mutex
	record         models.ApplicationRecord
	revision       uint64
	savedRevision  uint64
	pendingDraftID string
	submitting     bool
}

func New(identity models.Identity, drafts DraftStore, submissions SubmissionStore, opts ...Option) *Wizard {
	w := &Wizard{
		identity:    identity,
		drafts:      drafts,
		submissions: submissions,
		policy:      DefaultPolicy(),
		log:         logger.NewNoOpLogger(),
		now:         time.Now,
		record:      models.NewApplicationRecord(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.ids == nil {
		w.ids = NewMemoryIDGenerator(w.policy.ApplicationIDPrefix)
	}
	w.log = w.log.WithFields(map[string]interface{}{"user_key": identity.UserKey})
	return w
}

func (w *Wizard) env() Env {
	return Env{Policy: w.policy, Now: w.now()}
}

// Dispatch applies action to the record. On error the record is unchanged.
func (w *Wizard) Dispatch(action Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := Reduce(w.record, action, w.env())
	if err != nil {
		if se, ok := errors.AsStandard(err); ok && se.Code == errors.ErrCodeValidationFailed {
			step, _ := se.Metadata["step"].(string)
			metrics.StepValidationFailures.WithLabelValues(step).Inc()
		}
		return err
	}
	w.record = next
	w.revision++
	return nil
}

func (w *Wizard) SelectType(t models.ApplicationType) error { return w.Dispatch(SelectType{Type: t}) }

// Reset clears all step data and the type choice. The draft id is kept so
// the next save still overwrites the same draft.
func (w *Wizard) Reset() error { return w.Dispatch(Reset{}) }

// Advance moves to the next step only when the current one validates; the
// returned error then carries the field errors to display.
func (w *Wizard) Advance() error { return w.Dispatch(Advance{}) }

func (w *Wizard) Retreat() error { return w.Dispatch(Retreat{}) }

func (w *Wizard) AddWorkExperience() error { return w.Dispatch(AddWorkExperience{}) }

func (w *Wizard) RemoveWorkExperience(i int) error {
	return w.Dispatch(RemoveWorkExperience{Index: i})
}

func (w *Wizard) AddReferee() error { return w.Dispatch(AddReferee{}) }

func (w *Wizard) RemoveReferee(i int) error { return w.Dispatch(RemoveReferee{Index: i}) }

func (w *Wizard) Attach(slot Slot, a models.Attachment) error {
	return w.Dispatch(Attach{Slot: slot, Attachment: a})
}

// IsStepValid reports whether step n of the current sequence passes its
// rules. Steps outside the sequence are never valid.
func (w *Wizard) IsStepValid(n int) bool {
	fields, ok := w.ValidateStep(n)
	return ok && len(fields) == 0
}

// ValidateStep returns the field errors of step n, and false when n is not
// part of the current sequence.
func (w *Wizard) ValidateStep(n int) ([]errors.FieldError, bool) {
	w.mu.Lock()
	rec := w.record.Clone()
	w.mu.Unlock()

	step, ok := StepAt(rec.ApplicationType, n)
	if !ok {
		return nil, false
	}
	return ValidateStep(rec, step, w.env()), true
}

func (w *Wizard) StepTitle(n int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return StepTitle(w.record.ApplicationType, n)
}

func (w *Wizard) TotalSteps() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return TotalSteps(w.record.ApplicationType)
}

func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record.CurrentStep
}

// Record returns a copy of the current record.
func (w *Wizard) Record() models.ApplicationRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record.Clone()
}

func (w *Wizard) CompletionPercentage() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return CompletionPercentage(w.record)
}

// Dirty reports whether there are edits the last successful save does not cover.
func (w *Wizard) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revision != w.savedRevision
}

// Restore replaces the record with rec after normalizing it, for example
// from an imported file. The restored state counts as unsaved.
func (w *Wizard) Restore(rec models.ApplicationRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record = normalize(rec)
	w.revision++
}

func normalize(rec models.ApplicationRecord) models.ApplicationRecord {
	out := rec.Clone()
	if !out.ApplicationType.Valid() {
		out.ApplicationType = models.ApplicationTypeUnset
	}
	for len(out.Referees) < models.MinReferees {
		out.Referees = append(out.Referees, models.Referee{})
	}
	if len(out.Referees) > models.MaxReferees {
		out.Referees = out.Referees[:models.MaxReferees]
	}
	if out.WorkAndMotivation.WorkExperience == nil {
		out.WorkAndMotivation.WorkExperience = []models.WorkExperience{}
	}

	total := TotalSteps(out.ApplicationType)
	switch {
	case total == 0:
		out.CurrentStep = 0
	case out.CurrentStep < 1:
		out.CurrentStep = 1
	case out.CurrentStep > total:
		out.CurrentStep = total
	}
	return out
}

// SaveDraft persists the full record, overwriting any earlier draft of the
// same user. A failed save leaves the in-memory state untouched.
func (w *Wizard) SaveDraft(ctx context.Context) (*models.Draft, error) {
	return w.saveDraft(ctx, "manual")
}

func (w *Wizard) saveDraft(ctx context.Context, trigger string) (*models.Draft, error) {
	start := time.Now()
	if !w.identity.Present() {
		return nil, errors.NewIdentityMissingError("save_draft")
	}

	w.mu.Lock()
	rec := w.record.Clone()
	rev := w.revision
	draftID := rec.DraftID
	if draftID == "" {
		if w.pendingDraftID == "" {
			w.pendingDraftID = "draft_" + uuid.NewString()
		}
		draftID = w.pendingDraftID
	}
	w.mu.Unlock()

	savedAt := w.now().UTC()
	rec.DraftID = draftID
	rec.LastSavedAt = &savedAt

	draft := &models.Draft{
		ID:                   draftID,
		UserKey:              w.identity.UserKey,
		ApplicationType:      rec.ApplicationType,
		Record:               rec,
		CompletionPercentage: CompletionPercentage(rec),
		ProgramTitle:         rec.Program.FirstChoice,
		ProgramSlug:          models.ProgramSlug(rec.Program.FirstChoice),
		Faculty:              models.FacultyForProgram(rec.Program.FirstChoice),
		LastSavedAt:          savedAt,
	}

	if err := w.drafts.Save(ctx, draft); err != nil {
		metrics.DraftSaves.WithLabelValues(trigger, metrics.ResultFailure).Inc()
		metrics.DraftSaveDuration.WithLabelValues(metrics.ResultFailure).Observe(time.Since(start).Seconds())
		w.observe(ctx, "save_draft", metrics.ResultFailure, start)
		w.log.Error("Failed to save draft", map[string]interface{}{
			"draft_id": draftID,
			"trigger":  trigger,
			"error":    err,
		})
		return nil, errors.NewDraftSaveFailedError(err)
	}

	w.mu.Lock()
	w.record.DraftID = draftID
	if w.record.LastSavedAt == nil || savedAt.After(*w.record.LastSavedAt) {
		t := savedAt
		w.record.LastSavedAt = &t
	}
	if rev > w.savedRevision {
		w.savedRevision = rev
	}
	w.mu.Unlock()

	metrics.DraftSaves.WithLabelValues(trigger, metrics.ResultSuccess).Inc()
	metrics.DraftSaveDuration.WithLabelValues(metrics.ResultSuccess).Observe(time.Since(start).Seconds())
	w.observe(ctx, "save_draft", metrics.ResultSuccess, start)
	w.log.Debug("Draft saved", map[string]interface{}{
		"draft_id":   draftID,
		"trigger":    trigger,
		"completion": draft.CompletionPercentage,
	})
	return draft, nil
}

// LoadDraft replaces the record with the user's stored draft. It returns
// false and leaves the state alone when no draft exists.
func (w *Wizard) LoadDraft(ctx context.Context) (bool, error) {
	if !w.identity.Present() {
		return false, errors.NewIdentityMissingError("load_draft")
	}
	start := time.Now()
	draft, err := w.drafts.Load(ctx, w.identity.UserKey)
	return w.applyLoaded(ctx, start, draft, err)
}

// LoadDraftByID loads a specific draft. Drafts of other users are reported
// as not found.
func (w *Wizard) LoadDraftByID(ctx context.Context, draftID string) (bool, error) {
	if !w.identity.Present() {
		return false, errors.NewIdentityMissingError("load_draft")
	}
	start := time.Now()
	draft, err := w.drafts.LoadByID(ctx, draftID)
	if err == nil && draft != nil && draft.UserKey != w.identity.UserKey {
		return false, errors.NewDraftNotFoundError(draftID)
	}
	return w.applyLoaded(ctx, start, draft, err)
}

func (w *Wizard) applyLoaded(ctx context.Context, start time.Time, draft *models.Draft, err error) (bool, error) {
	if err != nil {
		w.observe(ctx, "load_draft", metrics.ResultFailure, start)
		w.log.Error("Failed to load draft", map[string]interface{}{"error": err})
		return false, errors.NewDraftLoadFailedError(err)
	}
	if draft == nil {
		w.observe(ctx, "load_draft", metrics.ResultSuccess, start)
		return false, nil
	}

	rec := normalize(draft.Record)
	rec.DraftID = draft.ID
	if rec.LastSavedAt == nil && !draft.LastSavedAt.IsZero() {
		t := draft.LastSavedAt
		rec.LastSavedAt = &t
	}

	w.mu.Lock()
	w.record = rec
	w.revision++
	w.savedRevision = w.revision
	w.pendingDraftID = ""
	w.mu.Unlock()

	w.observe(ctx, "load_draft", metrics.ResultSuccess, start)
	w.log.Info("Draft loaded", map[string]interface{}{"draft_id": draft.ID})
	return true, nil
}

// Submit finalizes the application. Every step must validate and the user
// must be identified; on any failure no submission exists and the draft is
// kept. On success the draft is deleted and the wizard starts over empty.
// Only one Submit runs at a time; an overlapping call is rejected.
func (w *Wizard) Submit(ctx context.Context) (*models.Submission, error) {
	start := time.Now()
	if !w.identity.Present() {
		return nil, errors.NewIdentityMissingError("submit")
	}

	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, errors.NewPreconditionError("submit", "Submission already in progress")
	}
	w.submitting = true
	rec := w.record.Clone()
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	if !rec.ApplicationType.Valid() {
		return nil, errors.NewPreconditionError("submit", "Select an application type first")
	}
	appType := string(rec.ApplicationType)

	env := w.env()
	if step, fields, invalid := FirstInvalidStep(rec, env); invalid {
		metrics.Submissions.WithLabelValues(appType, metrics.ResultInvalid).Inc()
		w.observe(ctx, "submit", metrics.ResultInvalid, start)
		return nil, errors.NewValidationFailedError(string(step), fields)
	}

	applicationID, err := w.ids.NextApplicationID(ctx, env.Now.Year())
	if err != nil {
		return nil, w.submitFailed(ctx, appType, start, err)
	}

	submittedAt := env.Now.UTC()
	sub := &models.Submission{
		ApplicationID:   applicationID,
		UserKey:         w.identity.UserKey,
		ApplicationType: rec.ApplicationType,
		Record:          rec,
		Status:          models.StatusSubmitted,
		ProgramTitle:    rec.Program.FirstChoice,
		ProgramSlug:     models.ProgramSlug(rec.Program.FirstChoice),
		Faculty:         models.FacultyForProgram(rec.Program.FirstChoice),
		SubmittedAt:     submittedAt,
		UpdatedAt:       submittedAt,
	}

	id, err := w.submissions.Create(ctx, sub)
	if err != nil {
		return nil, w.submitFailed(ctx, appType, start, err)
	}
	sub.ID = id

	if err := w.drafts.Delete(ctx, w.identity.UserKey); err != nil {
		w.log.Warn("Submitted but failed to delete draft", map[string]interface{}{
			"application_id": applicationID,
			"error":          err,
		})
	}
	for _, h := range w.hooks {
		if err := h.SubmissionCreated(ctx, sub); err != nil {
			w.log.Warn("Submission hook failed", map[string]interface{}{
				"application_id": applicationID,
				"error":          err,
			})
		}
	}

	w.mu.Lock()
	w.record = models.NewApplicationRecord()
	w.revision++
	w.savedRevision = w.revision
	w.pendingDraftID = ""
	w.mu.Unlock()

	metrics.Submissions.WithLabelValues(appType, metrics.ResultSuccess).Inc()
	w.observe(ctx, "submit", metrics.ResultSuccess, start)
	w.log.Info("Application submitted", map[string]interface{}{
		"application_id":   applicationID,
		"application_type": appType,
		"faculty":          sub.Faculty,
	})
	return sub, nil
}

func (w *Wizard) submitFailed(ctx context.Context, appType string, start time.Time, err error) error {
	metrics.Submissions.WithLabelValues(appType, metrics.ResultFailure).Inc()
	w.observe(ctx, "submit", metrics.ResultFailure, start)
	w.log.Error("Failed to submit application", map[string]interface{}{"error": err})
	if errors.Is(err, errors.ErrCodeDuplicateApplication) {
		return err
	}
	return errors.NewSubmissionFailedError(err)
}

func (w *Wizard) observe(ctx context.Context, op, status string, start time.Time) {
	if w.observer != nil {
		w.observer.RecordOperation(ctx, op, status, time.Since(start))
	}
}
