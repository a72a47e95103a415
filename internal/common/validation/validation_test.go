package validation

import (
	"testing"
	"time"

	"admission-portal/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldHelpers(t *testing.T) {
	assert.True(t, ValidateEmail("chikondi@example.mw"))
	assert.False(t, ValidateEmail("chikondi@example"))
	assert.False(t, ValidateEmail("chi kondi@example.mw"))

	assert.True(t, ValidatePhone("+265 (0) 999-123-456"))
	assert.False(t, ValidatePhone("call me"))
	assert.False(t, ValidatePhone(""))

	assert.True(t, ValidatePersonName("Chikondi"))
	assert.True(t, ValidatePersonName("Mary-Jane O'Neil"))
	assert.False(t, ValidatePersonName("R2D2"))

	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 4, CountWords("I love  applied\nsciences"))
}

func TestAgeOn(t *testing.T) {
	dob, ok := ParseDate("2008-10-18")
	require.True(t, ok)

	assert.Equal(t, 18, AgeOn(dob, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 17, AgeOn(dob, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 17, AgeOn(dob, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))

	_, ok = ParseDate("18/10/2008")
	assert.False(t, ok)
}

func TestResult(t *testing.T) {
	var r Result
	assert.True(t, r.Require("personal.surname", "Surname", "Phiri"))
	assert.False(t, r.Require("personal.firstName", "First name", " "))
	r.Add("personal.emailAddress", CodeInvalidFormat, "Email address is invalid")

	assert.False(t, r.Valid())
	assert.True(t, r.HasErrors("personal.firstName"))
	assert.False(t, r.HasErrors("personal.surname"))
	assert.Equal(t, []string{"First name is required", "Email address is invalid"}, r.GetErrorMessages())
	assert.Equal(t, CodeMissingRequired, r.GetErrorsForField("personal.firstName")[0].Code)
}

func TestValidateDraftPayload(t *testing.T) {
	valid := `{
		"applicationType": "undergraduate",
		"currentStep": 2,
		"personal": {"passportPhoto": {"name": "me.png", "size": 2048, "contentType": "image/png"}},
		"referees": [{"name": "A"}, {"name": "B"}],
		"workAndMotivation": {"workExperience": []}
	}`
	assert.NoError(t, ValidateDraftPayload([]byte(valid)))

	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"unknown type", `{"applicationType": "diploma", "currentStep": 0, "referees": [{}, {}]}`, CodeInvalidFormat},
		{"too many referees", `{"applicationType": "", "currentStep": 0, "referees": [{}, {}, {}, {}]}`, CodeOutOfRange},
		{"missing referees", `{"applicationType": "", "currentStep": 0}`, CodeMissingRequired},
		{"step out of range", `{"applicationType": "", "currentStep": 9, "referees": [{}, {}]}`, CodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraftPayload([]byte(tt.payload))
			require.Error(t, err)

			stdErr, ok := errors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidPayload, stdErr.Code)
			require.NotEmpty(t, stdErr.Fields)
			assert.Equal(t, tt.wantCode, stdErr.Fields[0].Code)
		})
	}

	err := ValidateDraftPayload([]byte(`{not json`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPayload))
}

type decisionInput struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	Decision      string `json:"decision" validate:"required,oneof=review accepted rejected"`
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(decisionInput{ApplicationID: "MUST-APP-2026-000001", Decision: "accepted"}))

	fields := ValidateStruct(decisionInput{Decision: "maybe"})
	require.Len(t, fields, 2)
	assert.Equal(t, "applicationId", fields[0].Field)
	assert.Equal(t, CodeMissingRequired, fields[0].Code)
	assert.Equal(t, "decision", fields[1].Field)
	assert.Equal(t, CodeInvalidFormat, fields[1].Code)
	assert.Contains(t, fields[1].Message, "review accepted rejected")
}
