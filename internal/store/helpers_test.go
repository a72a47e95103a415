package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"admission-portal/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func testRecord() models.ApplicationRecord {
	rec := models.NewApplicationRecord()
	rec.DraftID = "draft_1"
	rec.ApplicationType = models.ApplicationTypePostgraduate
	rec.CurrentStep = 3
	rec.Personal.FirstName = "Amina"
	rec.Personal.Surname = "Banda"
	rec.Personal.EmailAddress = "amina@example.com"
	rec.Personal.Nationality = "Malawian"
	rec.Personal.PassportPhoto = &models.Attachment{Name: "me.jpg", Size: 1024, ContentType: "image/jpeg"}
	rec.Program.FirstChoice = "Master of Science in Climate Change"
	rec.WorkAndMotivation.WorkExperience = []models.WorkExperience{
		{Organization: "NBS Bank", Position: "Teller"},
		{},
	}
	rec.Referees = []models.Referee{
		{Name: "Dr Phiri", Position: "Lecturer", Institution: "UNIMA", Address: "Zomba", Email: "phiri@example.com"},
		{Name: "Mrs Mwale", Position: "Manager", Institution: "NBS", Address: "Blantyre", Email: "mwale@example.com"},
	}
	return rec
}

func testDraft(userKey, id string) *models.Draft {
	rec := testRecord()
	rec.DraftID = id
	return &models.Draft{
		ID:                   id,
		UserKey:              userKey,
		ApplicationType:      rec.ApplicationType,
		Record:               rec,
		CompletionPercentage: 80,
		ProgramTitle:         rec.Program.FirstChoice,
		ProgramSlug:          models.ProgramSlug(rec.Program.FirstChoice),
		Faculty:              models.FacultyForProgram(rec.Program.FirstChoice),
		LastSavedAt:          testNow,
	}
}

func testSubmission(applicationID, userKey string, submittedAt time.Time) *models.Submission {
	rec := testRecord()
	return &models.Submission{
		ApplicationID:   applicationID,
		UserKey:         userKey,
		ApplicationType: rec.ApplicationType,
		Record:          rec,
		Status:          models.StatusSubmitted,
		ProgramTitle:    rec.Program.FirstChoice,
		ProgramSlug:     models.ProgramSlug(rec.Program.FirstChoice),
		Faculty:         models.FacultyForProgram(rec.Program.FirstChoice),
		SubmittedAt:     submittedAt,
		UpdatedAt:       submittedAt,
	}
}

func recordJSON(t *testing.T, rec models.ApplicationRecord) []byte {
	t.Helper()
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	return b
}
