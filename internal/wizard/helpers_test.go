package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"admission-portal/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func testEnv() Env {
	return Env{Policy: DefaultPolicy(), Now: testNow}
}

func testIdentity() models.Identity {
	return models.Identity{UserKey: "user-42", Email: "amina@example.com", Authenticated: true}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func photo() models.Attachment {
	return models.Attachment{Name: "me.jpg", Size: 120_000, ContentType: "image/jpeg", Ref: "uploads/me.jpg"}
}

func validPersonal() models.PersonalInfo {
	return models.PersonalInfo{
		Title:                 "Ms",
		Surname:               "Banda",
		FirstName:             "Amina",
		DateOfBirth:           "2004-05-12",
		Nationality:           "Malawian",
		CountryOfResidence:    "Malawi",
		Gender:                "Female",
		CorrespondenceAddress: "P.O. Box 5196, Limbe",
		TelephoneNumbers:      "+265 999 123 456",
		EmailAddress:          "amina@example.com",
	}
}

func validReferee(i int) models.Referee {
	return models.Referee{
		Name:        fmt.Sprintf("Referee %c", 'A'+i),
		Position:    "Head Teacher",
		Institution: "Blantyre Secondary School",
		Address:     "P.O. Box 1, Blantyre",
		Email:       fmt.Sprintf("referee%d@example.com", i),
	}
}

func validDeclaration() models.Declaration {
	return models.Declaration{
		Agreed:               true,
		FullName:             "Amina Banda",
		Date:                 "2026-10-17",
		AllSectionsCompleted: true,
		AllDocumentsUploaded: true,
		DepositSlipAttached:  true,
	}
}

// validUndergraduateRecord builds a record that passes every undergraduate step.
func validUndergraduateRecord() models.ApplicationRecord {
	rec := models.NewApplicationRecord()
	rec.ApplicationType = models.ApplicationTypeUndergraduate
	rec.CurrentStep = 1
	rec.Personal = validPersonal()
	p := photo()
	rec.Personal.PassportPhoto = &p
	rec.Program = models.ProgramInfo{LevelOfStudy: "Undergraduate", FirstChoice: "Bachelor of Science in Computer Systems and Security"}
	rec.Education.Secondary = models.SecondaryEducation{
		SchoolName:      "Blantyre Secondary School",
		FromDate:        "2018-01-10",
		ToDate:          "2022-07-20",
		SubjectsStudied: "Mathematics, Physics, Chemistry, English",
		ExaminationYear: "2022",
		ResultsYear:     "2022",
		GradesAchieved:  "6 points",
	}
	rec.Referees = []models.Referee{validReferee(0), validReferee(1)}
	rec.Declaration = validDeclaration()
	return rec
}

func validPostgraduateRecord() models.ApplicationRecord {
	rec := validUndergraduateRecord()
	rec.ApplicationType = models.ApplicationTypePostgraduate
	rec.Education.Secondary = models.SecondaryEducation{}
	rec.Program = models.ProgramInfo{LevelOfStudy: "Postgraduate", FirstChoice: "Master of Science in Climate Change"}
	rec.Education.University = models.UniversityEducation{
		Institution:   "University of Malawi",
		FromDate:      "2019-09-01",
		ToDate:        "2023-07-30",
		Programme:     "BSc Environmental Science",
		Qualification: "Bachelor of Science",
		DateOfAward:   "2023-12-01",
		ClassOfAward:  "Upper Second",
	}
	rec.WorkAndMotivation.Motivation.Essay = words(350)
	return rec
}

// fakeDraftStore keeps drafts as JSON so nothing is shared with the caller.
type fakeDraftStore struct {
	mu         sync.Mutex
	byUser     map[string][]byte
	saveErr    error
	loadErr    error
	deleteErr  error
	saves      int
	loadDelay  time.Duration
	beforeSave func(d *models.Draft)
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{byUser: make(map[string][]byte)}
}

func (s *fakeDraftStore) Save(_ context.Context, d *models.Draft) error {
	if s.beforeSave != nil {
		s.beforeSave(d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.byUser[d.UserKey] = b
	return nil
}

func (s *fakeDraftStore) Load(_ context.Context, userKey string) (*models.Draft, error) {
	time.Sleep(s.loadDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	b, ok := s.byUser[userKey]
	if !ok {
		return nil, nil
	}
	var d models.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *fakeDraftStore) LoadByID(ctx context.Context, draftID string) (*models.Draft, error) {
	s.mu.Lock()
	users := make([]string, 0, len(s.byUser))
	for k := range s.byUser {
		users = append(users, k)
	}
	s.mu.Unlock()
	for _, u := range users {
		d, err := s.Load(ctx, u)
		if err != nil {
			return nil, err
		}
		if d != nil && d.ID == draftID {
			return d, nil
		}
	}
	return nil, nil
}

func (s *fakeDraftStore) Delete(_ context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.byUser, userKey)
	return nil
}

func (s *fakeDraftStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type fakeSubmissionStore struct {
	mu          sync.Mutex
	created     []*models.Submission
	createErr   error
	createDelay time.Duration
}

func (s *fakeSubmissionStore) Create(_ context.Context, sub *models.Submission) (string, error) {
	time.Sleep(s.createDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, sub)
	return fmt.Sprintf("sub-%d", len(s.created)), nil
}

type recordingHook struct {
	got []*models.Submission
	err error
}

func (h *recordingHook) SubmissionCreated(_ context.Context, sub *models.Submission) error {
	h.got = append(h.got, sub)
	return h.err
}

func (s *fakeSubmissionStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type observedOp struct {
	operation string
	status    string
	duration  time.Duration
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []observedOp
}

func (o *recordingObserver) RecordOperation(_ context.Context, operation, status string, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, observedOp{operation: operation, status: status, duration: duration})
}

func (o *recordingObserver) last(operation string) (observedOp, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.ops) - 1; i >= 0; i-- {
		if o.ops[i].operation == operation {
			return o.ops[i], true
		}
	}
	return observedOp{}, false
}

func newTestWizard(t *testing.T, drafts DraftStore, subs SubmissionStore, opts ...Option) *Wizard {
	t.Helper()
	base := []Option{WithClock(func() time.Time { return testNow })}
	return New(testIdentity(), drafts, subs, append(base, opts...)...)
}
