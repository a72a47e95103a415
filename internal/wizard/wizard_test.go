package wizard

import (
	"context"
	stderrors "errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/metrics"
	"admission-portal/internal/models"
)

var applicationIDPattern = regexp.MustCompile(`^MUST-APP-\d{4}-\d{6}$`)

// fillUndergraduate drives a fresh wizard through the public API until every
// undergraduate step is valid.
func fillUndergraduate(t *testing.T, w *Wizard) {
	t.Helper()
	want := validUndergraduateRecord()

	require.NoError(t, w.SelectType(models.ApplicationTypeUndergraduate))
	require.NoError(t, w.Dispatch(SetPersonal{Personal: want.Personal}))
	require.NoError(t, w.Attach(SlotPassportPhoto, photo()))
	require.NoError(t, w.Dispatch(SetProgram{Program: want.Program}))
	require.NoError(t, w.Dispatch(SetSecondaryEducation{Secondary: want.Education.Secondary}))
	require.NoError(t, w.Dispatch(SetSpecialNeeds{SpecialNeeds: models.SpecialNeeds{HasDisability: false}}))
	for i, r := range want.Referees {
		require.NoError(t, w.Dispatch(UpdateReferee{Index: i, Referee: r}))
	}
	require.NoError(t, w.Dispatch(SetDeclaration{Declaration: want.Declaration}))
}

func TestNewWizardStartsEmpty(t *testing.T) {
	w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{})

	assert.Equal(t, 0, w.TotalSteps())
	assert.Equal(t, 0, w.CurrentStep())
	assert.Equal(t, UnknownStepTitle, w.StepTitle(1))
	assert.False(t, w.IsStepValid(1))
	assert.False(t, w.Dirty())

	require.NoError(t, w.SelectType(models.ApplicationTypePostgraduate))
	assert.Equal(t, 5, w.TotalSteps())
	assert.Equal(t, "Personal Information", w.StepTitle(w.CurrentStep()))
	assert.True(t, w.Dirty())
}

func TestAdvanceIsNoOpWhileStepInvalid(t *testing.T) {
	w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{})
	require.NoError(t, w.SelectType(models.ApplicationTypeUndergraduate))

	err := w.Advance()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidationFailed))
	assert.Equal(t, 1, w.CurrentStep())

	fields, ok := w.ValidateStep(1)
	require.True(t, ok)
	assert.NotEmpty(t, fields)
}

func TestRetreatThenAdvanceReturnsToSameStep(t *testing.T) {
	w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{})
	fillUndergraduate(t, w)

	require.NoError(t, w.Advance())
	require.NoError(t, w.Advance())
	require.Equal(t, 3, w.CurrentStep())

	require.NoError(t, w.Retreat())
	require.NoError(t, w.Advance())
	assert.Equal(t, 3, w.CurrentStep())
}

func TestPostgraduateShortEssayBlocksAdvance(t *testing.T) {
	w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{})
	rec := validPostgraduateRecord()
	rec.CurrentStep = 3
	rec.WorkAndMotivation.Motivation.Essay = words(50)
	w.Restore(rec)

	err := w.Advance()
	require.Error(t, err)
	se, ok := errors.AsStandard(err)
	require.True(t, ok)
	require.Len(t, se.Fields, 1)
	assert.Contains(t, se.Fields[0].Message, "300 and 500 words")
	assert.Equal(t, 3, w.CurrentStep())
	assert.False(t, w.IsStepValid(3))
}

func TestDisabilityWithoutDescription(t *testing.T) {
	w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{})
	fillUndergraduate(t, w)
	require.NoError(t, w.Dispatch(SetSpecialNeeds{SpecialNeeds: models.SpecialNeeds{HasDisability: true}}))

	assert.False(t, w.IsStepValid(3))
	require.NoError(t, w.Dispatch(SetSpecialNeeds{SpecialNeeds: models.SpecialNeeds{HasDisability: true, Description: "Large print papers"}}))
	assert.True(t, w.IsStepValid(3))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	drafts := newFakeDraftStore()
	w := newTestWizard(t, drafts, &fakeSubmissionStore{})
	rec := validPostgraduateRecord()
	rec.CurrentStep = 4
	rec.WorkAndMotivation.WorkExperience = []models.WorkExperience{{Organization: "NBS Bank", Position: "Teller", FromDate: "2023-01-01"}}
	rec.Referees = append(rec.Referees, validReferee(2))
	w.Restore(rec)

	draft, err := w.SaveDraft(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^draft_`, draft.ID)
	assert.Equal(t, 100, draft.CompletionPercentage)
	assert.Equal(t, "Ndata School of Climate and Earth Sciences", draft.Faculty)
	assert.Equal(t, models.DraftStatusComplete, draft.ListStatus())
	assert.False(t, w.Dirty())

	fresh := newTestWizard(t, drafts, &fakeSubmissionStore{})
	found, err := fresh.LoadDraft(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	want := w.Record()
	got := fresh.Record()
	require.NotNil(t, got.LastSavedAt)
	want.LastSavedAt, got.LastSavedAt = nil, nil
	assert.Equal(t, want, got)
	assert.False(t, fresh.Dirty())
}

func TestLoadDraftWithoutDraftKeepsState(t *testing.T) {
	w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{})
	require.NoError(t, w.SelectType(models.ApplicationTypeUndergraduate))

	found, err := w.LoadDraft(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.ApplicationTypeUndergraduate, w.Record().ApplicationType)
}

func TestLoadDraftByIDChecksOwner(t *testing.T) {
	drafts := newFakeDraftStore()
	owner := newTestWizard(t, drafts, &fakeSubmissionStore{})
	require.NoError(t, owner.SelectType(models.ApplicationTypeUndergraduate))
	draft, err := owner.SaveDraft(context.Background())
	require.NoError(t, err)

	other := New(models.Identity{UserKey: "someone-else", Authenticated: true}, drafts, &fakeSubmissionStore{})
	found, err := other.LoadDraftByID(context.Background(), draft.ID)
	assert.False(t, found)
	assert.True(t, errors.Is(err, errors.ErrCodeDraftNotFound))

	again := newTestWizard(t, drafts, &fakeSubmissionStore{})
	found, err = again.LoadDraftByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSaveFailureLeavesStateUnchanged(t *testing.T) {
	drafts := newFakeDraftStore()
	drafts.saveErr = stderrors.New("connection reset")
	w := newTestWizard(t, drafts, &fakeSubmissionStore{}, WithLogger(logger.NewTestLogger(t)))
	require.NoError(t, w.SelectType(models.ApplicationTypeUndergraduate))
	before := w.Record()

	_, err := w.SaveDraft(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDraftSaveFailed))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, "Your draft could not be saved. Please try again.", errors.UserMessage(err))

	assert.Equal(t, before, w.Record())
	assert.True(t, w.Dirty())
}

func TestLoadFailureLeavesStateUnchanged(t *testing.T) {
	drafts := newFakeDraftStore()
	drafts.loadErr = stderrors.New("timeout")
	w := newTestWizard(t, drafts, &fakeSubmissionStore{})
	require.NoError(t, w.SelectType(models.ApplicationTypePostgraduate))
	before := w.Record()

	found, err := w.LoadDraft(context.Background())
	assert.False(t, found)
	assert.True(t, errors.Is(err, errors.ErrCodeDraftLoadFailed))
	assert.Equal(t, before, w.Record())
}

func TestLoadDraftDurationIncludesStoreCall(t *testing.T) {
	drafts := newFakeDraftStore()
	seed := newTestWizard(t, drafts, &fakeSubmissionStore{})
	require.NoError(t, seed.SelectType(models.ApplicationTypeUndergraduate))
	_, err := seed.SaveDraft(context.Background())
	require.NoError(t, err)

	drafts.loadDelay = 30 * time.Millisecond
	obs := &recordingObserver{}
	w := newTestWizard(t, drafts, &fakeSubmissionStore{}, WithObserver(obs))

	found, err := w.LoadDraft(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	op, ok := obs.last("load_draft")
	require.True(t, ok)
	assert.Equal(t, metrics.ResultSuccess, op.status)
	assert.GreaterOrEqual(t, op.duration, drafts.loadDelay)
}

func TestMissingIdentity(t *testing.T) {
	drafts := newFakeDraftStore()
	subs := &fakeSubmissionStore{}
	w := New(models.Identity{}, drafts, subs, WithClock(func() time.Time { return testNow }))
	w.Restore(validUndergraduateRecord())

	_, err := w.SaveDraft(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeIdentityMissing))

	_, err = w.Submit(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeIdentityMissing))
	assert.Empty(t, subs.created)
	assert.Zero(t, drafts.saveCount())
}

func TestSubmitRejectedWhenAnyStepInvalid(t *testing.T) {
	drafts := newFakeDraftStore()
	subs := &fakeSubmissionStore{}
	w := newTestWizard(t, drafts, subs)
	fillUndergraduate(t, w)
	require.NoError(t, w.Dispatch(SetDeclaration{Declaration: models.Declaration{}}))
	_, err := w.SaveDraft(context.Background())
	require.NoError(t, err)

	sub, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, sub)
	se, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, string(StepRefereesDeclaration), se.Metadata["step"])

	assert.Empty(t, subs.created)
	found, err := newTestWizard(t, drafts, subs).LoadDraft(context.Background())
	require.NoError(t, err)
	assert.True(t, found, "draft must survive a rejected submit")
}

func TestSubmitUndergraduate(t *testing.T) {
	drafts := newFakeDraftStore()
	subs := &fakeSubmissionStore{}
	hook := &recordingHook{err: stderrors.New("broker unavailable")}
	w := newTestWizard(t, drafts, subs, WithSubmissionHook(hook), WithLogger(logger.NewTestLogger(t)))
	fillUndergraduate(t, w)
	_, err := w.SaveDraft(context.Background())
	require.NoError(t, err)

	sub, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, applicationIDPattern, sub.ApplicationID)
	assert.Equal(t, "MUST-APP-2026-000001", sub.ApplicationID)
	assert.Equal(t, "sub-1", sub.ID)
	assert.Equal(t, models.StatusSubmitted, sub.Status)
	assert.Equal(t, "Malawi Institute of Technology", sub.Faculty)
	assert.Equal(t, testNow, sub.SubmittedAt)
	require.Len(t, hook.got, 1, "hook errors do not fail the submission")

	found, err := newTestWizard(t, drafts, subs).LoadDraft(context.Background())
	require.NoError(t, err)
	assert.False(t, found, "draft is deleted after submit")

	assert.Equal(t, models.ApplicationTypeUnset, w.Record().ApplicationType)
	assert.False(t, w.Dirty())
}

func TestSubmitStoreFailureKeepsDraftAndRecord(t *testing.T) {
	drafts := newFakeDraftStore()
	subs := &fakeSubmissionStore{createErr: stderrors.New("insert failed")}
	w := newTestWizard(t, drafts, subs)
	fillUndergraduate(t, w)
	_, err := w.SaveDraft(context.Background())
	require.NoError(t, err)
	before := w.Record()

	_, err = w.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSubmissionFailed))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, before, w.Record())

	found, err := newTestWizard(t, drafts, subs).LoadDraft(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
}

func TestConcurrentSubmitCreatesOneSubmission(t *testing.T) {
	subs := &fakeSubmissionStore{createDelay: 50 * time.Millisecond}
	w := newTestWizard(t, newFakeDraftStore(), subs)
	fillUndergraduate(t, w)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.Submit(context.Background())
		}(i)
	}
	wg.Wait()

	var ok, inProgress int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errors.ErrCodePreconditionViolation):
			inProgress++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, inProgress)
	assert.Equal(t, 1, subs.createdCount())
}

func TestSubmitIDsAreUnique(t *testing.T) {
	ids := NewMemoryIDGenerator("MUST-APP")
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		w := newTestWizard(t, newFakeDraftStore(), &fakeSubmissionStore{}, WithIDGenerator(ids))
		fillUndergraduate(t, w)
		sub, err := w.Submit(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[sub.ApplicationID])
		seen[sub.ApplicationID] = true
	}
}

func TestOverlappingSavesLastCompletionWins(t *testing.T) {
	drafts := newFakeDraftStore()
	w := newTestWizard(t, drafts, &fakeSubmissionStore{})
	fillUndergraduate(t, w)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	drafts.beforeSave = func(d *models.Draft) {
		if d.Record.Personal.Surname == "First" {
			once.Do(func() { close(entered) })
			<-release
		}
	}

	p := validPersonal()
	p.Surname = "First"
	require.NoError(t, w.Dispatch(SetPersonal{Personal: p}))

	done := make(chan error, 1)
	go func() {
		_, err := w.SaveDraft(context.Background())
		done <- err
	}()
	<-entered

	p.Surname = "Second"
	require.NoError(t, w.Dispatch(SetPersonal{Personal: p}))
	_, err := w.SaveDraft(context.Background())
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	stored, err := drafts.Load(context.Background(), testIdentity().UserKey)
	require.NoError(t, err)
	assert.Equal(t, "First", stored.Record.Personal.Surname, "the save that completed last is persisted")
	assert.Equal(t, "Second", w.Record().Personal.Surname, "in-memory edits are untouched by a late save")
	assert.False(t, w.Dirty())
}

func TestAutosave(t *testing.T) {
	drafts := newFakeDraftStore()
	policy := DefaultPolicy()
	policy.AutosaveInterval = 10 * time.Millisecond
	w := newTestWizard(t, drafts, &fakeSubmissionStore{}, WithPolicy(policy))

	saver := NewAutosaver(w)
	saver.Start(context.Background())
	defer saver.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, drafts.saveCount(), "nothing to save before a type is chosen")

	require.NoError(t, w.SelectType(models.ApplicationTypeUndergraduate))
	require.Eventually(t, func() bool { return drafts.saveCount() > 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !w.Dirty() }, time.Second, 5*time.Millisecond)

	saves := drafts.saveCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, saves, drafts.saveCount(), "clean state is not re-saved")
}
