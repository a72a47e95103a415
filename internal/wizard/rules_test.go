package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/validation"
	"admission-portal/internal/models"
)

func fieldCodes(fields []errors.FieldError) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Field] = f.Code
	}
	return out
}

func TestStepSequences(t *testing.T) {
	assert.Equal(t, 4, TotalSteps(models.ApplicationTypeUndergraduate))
	assert.Equal(t, 5, TotalSteps(models.ApplicationTypePostgraduate))
	assert.Equal(t, 0, TotalSteps(models.ApplicationTypeUnset))

	assert.Equal(t, "Special Needs", StepTitle(models.ApplicationTypeUndergraduate, 3))
	assert.Equal(t, "Work Experience & Motivation", StepTitle(models.ApplicationTypePostgraduate, 3))
	assert.Equal(t, "Referees & Declaration", StepTitle(models.ApplicationTypePostgraduate, 5))

	for _, n := range []int{-1, 0, 5, 99} {
		assert.Equal(t, UnknownStepTitle, StepTitle(models.ApplicationTypeUndergraduate, n), "step %d", n)
	}
	assert.Equal(t, UnknownStepTitle, StepTitle(models.ApplicationTypeUnset, 1))

	assert.Equal(t, 3, StepNumber(models.ApplicationTypePostgraduate, StepWorkMotivation))
	assert.Equal(t, 0, StepNumber(models.ApplicationTypeUndergraduate, StepWorkMotivation))
}

func TestValidRecordsPassEveryStep(t *testing.T) {
	for name, rec := range map[string]models.ApplicationRecord{
		"undergraduate": validUndergraduateRecord(),
		"postgraduate":  validPostgraduateRecord(),
	} {
		t.Run(name, func(t *testing.T) {
			step, fields, invalid := FirstInvalidStep(rec, testEnv())
			assert.False(t, invalid, "step %s failed: %+v", step, fields)
		})
	}
}

func TestValidatePersonal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.PersonalInfo)
		field  string
		code   string
	}{
		{"missing surname", func(p *models.PersonalInfo) { p.Surname = "  " }, "personal.surname", validation.CodeMissingRequired},
		{"digits in name", func(p *models.PersonalInfo) { p.FirstName = "Am1na" }, "personal.firstName", validation.CodeInvalidFormat},
		{"bad email", func(p *models.PersonalInfo) { p.EmailAddress = "amina.example.com" }, "personal.emailAddress", validation.CodeInvalidFormat},
		{"bad phone", func(p *models.PersonalInfo) { p.TelephoneNumbers = "call me" }, "personal.telephoneNumbers", validation.CodeInvalidFormat},
		{"unparseable birth date", func(p *models.PersonalInfo) { p.DateOfBirth = "12/05/2004" }, "personal.dateOfBirth", validation.CodeInvalidFormat},
		{"fifteen years old", func(p *models.PersonalInfo) { p.DateOfBirth = "2011-01-01" }, "personal.dateOfBirth", validation.CodeUnderage},
		{"permanent address shown but empty", func(p *models.PersonalInfo) { p.ShowPermanentAddress = true }, "personal.permanentAddress", validation.CodeMissingRequired},
		{"no passport photo", func(p *models.PersonalInfo) { p.PassportPhoto = nil }, "personal.passportPhoto", validation.CodeMissingRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validUndergraduateRecord()
			tt.mutate(&rec.Personal)
			codes := fieldCodes(ValidateStep(rec, StepPersonal, testEnv()))
			assert.Equal(t, tt.code, codes[tt.field], "errors: %v", codes)
		})
	}
}

func TestValidatePersonalSixteenthBirthday(t *testing.T) {
	rec := validUndergraduateRecord()
	rec.Personal.DateOfBirth = "2010-10-17"
	assert.Empty(t, ValidateStep(rec, StepPersonal, testEnv()))

	rec.Personal.DateOfBirth = "2010-10-18"
	codes := fieldCodes(ValidateStep(rec, StepPersonal, testEnv()))
	assert.Equal(t, validation.CodeUnderage, codes["personal.dateOfBirth"])
}

func TestValidateProgrammeEducationByType(t *testing.T) {
	under := validUndergraduateRecord()
	under.Education.University = models.UniversityEducation{}
	assert.Empty(t, ValidateStep(under, StepProgrammeEducation, testEnv()), "university fields are not required for undergraduates")

	under.Education.Secondary.GradesAchieved = ""
	codes := fieldCodes(ValidateStep(under, StepProgrammeEducation, testEnv()))
	assert.Contains(t, codes, "education.secondary.gradesAchieved")

	post := validPostgraduateRecord()
	post.Education.University.ClassOfAward = ""
	codes = fieldCodes(ValidateStep(post, StepProgrammeEducation, testEnv()))
	assert.Contains(t, codes, "education.university.classOfAward")
	assert.NotContains(t, codes, "education.secondary.schoolName")
}

func TestValidateEssayWordCount(t *testing.T) {
	tests := []struct {
		name  string
		essay string
		valid bool
	}{
		{"fifty words", words(50), false},
		{"lower bound", words(300), true},
		{"upper bound", words(500), true},
		{"too long", words(501), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validPostgraduateRecord()
			rec.WorkAndMotivation.Motivation.Essay = tt.essay
			fields := ValidateStep(rec, StepWorkMotivation, testEnv())
			if tt.valid {
				assert.Empty(t, fields)
				return
			}
			require.Len(t, fields, 1)
			assert.Equal(t, "workAndMotivation.motivation.essay", fields[0].Field)
		})
	}
}

func TestValidateEssayMessageNamesWordCount(t *testing.T) {
	rec := validPostgraduateRecord()
	rec.WorkAndMotivation.Motivation.Essay = words(50)

	fields := ValidateStep(rec, StepWorkMotivation, testEnv())
	require.Len(t, fields, 1)
	assert.Equal(t, validation.CodeOutOfRange, fields[0].Code)
	assert.Equal(t, "Motivation essay must be between 300 and 500 words (currently 50)", fields[0].Message)
}

func TestValidateMotivationNoteInsteadOfEssay(t *testing.T) {
	rec := validPostgraduateRecord()
	rec.WorkAndMotivation.Motivation = models.Motivation{UploadNote: true}
	codes := fieldCodes(ValidateStep(rec, StepWorkMotivation, testEnv()))
	assert.Equal(t, validation.CodeMissingRequired, codes["workAndMotivation.motivation.note"])

	note := models.Attachment{Name: "note.pdf", Size: 2048, ContentType: "application/pdf"}
	rec.WorkAndMotivation.Motivation.Note = &note
	assert.Empty(t, ValidateStep(rec, StepWorkMotivation, testEnv()))
}

func TestValidatePartialWorkExperience(t *testing.T) {
	rec := validPostgraduateRecord()
	rec.WorkAndMotivation.WorkExperience = []models.WorkExperience{
		{},
		{FromDate: "2023-08-01", Organization: "Press Corporation"},
	}
	codes := fieldCodes(ValidateStep(rec, StepWorkMotivation, testEnv()))
	assert.Equal(t, map[string]string{
		"workAndMotivation.workExperience[1].position": validation.CodeMissingRequired,
	}, codes)
}

func TestValidateSpecialNeeds(t *testing.T) {
	rec := validUndergraduateRecord()
	rec.SpecialNeeds = models.SpecialNeeds{HasDisability: true}
	codes := fieldCodes(ValidateStep(rec, StepSpecialNeeds, testEnv()))
	assert.Equal(t, validation.CodeMissingRequired, codes["specialNeeds.description"])

	rec.SpecialNeeds.Description = "Wheelchair access to lecture rooms"
	assert.Empty(t, ValidateStep(rec, StepSpecialNeeds, testEnv()))
}

func TestValidateReferees(t *testing.T) {
	t.Run("one incomplete referee", func(t *testing.T) {
		rec := validUndergraduateRecord()
		rec.Referees[1].Email = ""
		codes := fieldCodes(ValidateStep(rec, StepRefereesDeclaration, testEnv()))
		assert.Equal(t, validation.CodeMissingRequired, codes["referees[1].email"])
	})

	t.Run("empty third referee is ignored once two are complete", func(t *testing.T) {
		rec := validUndergraduateRecord()
		rec.Referees = append(rec.Referees, models.Referee{})
		assert.Empty(t, ValidateStep(rec, StepRefereesDeclaration, testEnv()))
	})

	t.Run("whitespace-only referee is not complete", func(t *testing.T) {
		rec := validUndergraduateRecord()
		rec.Referees = []models.Referee{
			rec.Referees[0],
			{Name: "   ", Position: "\t", Institution: " ", Address: " ", Email: "ok@example.com"},
		}
		codes := fieldCodes(ValidateStep(rec, StepRefereesDeclaration, testEnv()))
		assert.Equal(t, validation.CodeMissingRequired, codes["referees[1].name"])
		assert.Equal(t, validation.CodeMissingRequired, codes["referees[1].address"])
	})

	t.Run("malformed email", func(t *testing.T) {
		rec := validUndergraduateRecord()
		rec.Referees[0].Email = "not-an-email"
		codes := fieldCodes(ValidateStep(rec, StepRefereesDeclaration, testEnv()))
		assert.Equal(t, validation.CodeInvalidFormat, codes["referees[0].email"])
	})

	t.Run("declaration unchecked", func(t *testing.T) {
		rec := validUndergraduateRecord()
		rec.Declaration.DepositSlipAttached = false
		codes := fieldCodes(ValidateStep(rec, StepRefereesDeclaration, testEnv()))
		assert.Equal(t, map[string]string{
			"declaration.depositSlipAttached": validation.CodeMissingRequired,
		}, codes)
	})
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0, CompletionPercentage(models.NewApplicationRecord()))
	assert.Equal(t, 100, CompletionPercentage(validUndergraduateRecord()))
	assert.Equal(t, 100, CompletionPercentage(validPostgraduateRecord()))

	rec := models.NewApplicationRecord()
	rec.ApplicationType = models.ApplicationTypeUndergraduate
	assert.Equal(t, 25, CompletionPercentage(rec))

	rec.ApplicationType = models.ApplicationTypePostgraduate
	assert.Equal(t, 20, CompletionPercentage(rec))

	post := validPostgraduateRecord()
	post.WorkAndMotivation.Motivation.Essay = ""
	assert.Equal(t, 80, CompletionPercentage(post))
}
