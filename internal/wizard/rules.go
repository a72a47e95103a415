package wizard

import (
	"fmt"
	"strings"
	"time"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/validation"
	"admission-portal/internal/models"
)

// Env is everything outside the record that a transition or rule depends on.
type Env struct {
	Policy Policy
	Now    time.Time
}

type stepRule func(rec models.ApplicationRecord, env Env, res *validation.Result)

var stepRules = map[Step]stepRule{
	StepPersonal:            validatePersonal,
	StepProgrammeEducation:  validateProgrammeEducation,
	StepWorkMotivation:      validateWorkMotivation,
	StepSpecialNeeds:        validateSpecialNeeds,
	StepRefereesDeclaration: validateRefereesDeclaration,
}

// ValidateStep runs the rule set of one step against rec. An empty result
// means the step is valid.
func ValidateStep(rec models.ApplicationRecord, step Step, env Env) []errors.FieldError {
	rule, ok := stepRules[step]
	if !ok {
		return []errors.FieldError{{Field: "step", Code: validation.CodeInvalidInput, Message: fmt.Sprintf("unknown step %q", step)}}
	}
	var res validation.Result
	rule(rec, env, &res)
	return res.Errors
}

// FirstInvalidStep checks every step of rec's sequence in order and returns
// the first one that fails together with its errors.
func FirstInvalidStep(rec models.ApplicationRecord, env Env) (Step, []errors.FieldError, bool) {
	for _, step := range Steps(rec.ApplicationType) {
		if fields := ValidateStep(rec, step, env); len(fields) > 0 {
			return step, fields, true
		}
	}
	return "", nil, false
}

func validatePersonal(rec models.ApplicationRecord, env Env, res *validation.Result) {
	p := rec.Personal

	res.Require("personal.title", "Title", p.Title)
	if res.Require("personal.surname", "Surname", p.Surname) && !validation.ValidatePersonName(p.Surname) {
		res.Add("personal.surname", validation.CodeInvalidFormat, "Surname may only contain letters and spaces")
	}
	if res.Require("personal.firstName", "First name", p.FirstName) && !validation.ValidatePersonName(p.FirstName) {
		res.Add("personal.firstName", validation.CodeInvalidFormat, "First name may only contain letters and spaces")
	}

	if res.Require("personal.dateOfBirth", "Date of birth", p.DateOfBirth) {
		dob, ok := validation.ParseDate(p.DateOfBirth)
		switch {
		case !ok:
			res.Add("personal.dateOfBirth", validation.CodeInvalidFormat, "Date of birth must be in YYYY-MM-DD format")
		case validation.AgeOn(dob, env.Now) < env.Policy.MinimumAge:
			res.Add("personal.dateOfBirth", validation.CodeUnderage,
				fmt.Sprintf("You must be at least %d years old to apply", env.Policy.MinimumAge))
		}
	}

	res.Require("personal.nationality", "Nationality", p.Nationality)
	res.Require("personal.countryOfResidence", "Country of residence", p.CountryOfResidence)
	res.Require("personal.gender", "Gender", p.Gender)
	res.Require("personal.correspondenceAddress", "Correspondence address", p.CorrespondenceAddress)

	if res.Require("personal.telephoneNumbers", "Telephone number", p.TelephoneNumbers) && !validation.ValidatePhone(p.TelephoneNumbers) {
		res.Add("personal.telephoneNumbers", validation.CodeInvalidFormat, "Telephone number may only contain digits, spaces, dashes and parentheses")
	}
	if res.Require("personal.emailAddress", "Email address", p.EmailAddress) && !validation.ValidateEmail(p.EmailAddress) {
		res.Add("personal.emailAddress", validation.CodeInvalidFormat, "Email address is not valid")
	}

	if p.ShowPermanentAddress {
		res.Require("personal.permanentAddress", "Permanent address", p.PermanentAddress)
	}
	if p.PassportPhoto == nil {
		res.Add("personal.passportPhoto", validation.CodeMissingRequired, "Passport photo is required")
	}
}

func validateProgrammeEducation(rec models.ApplicationRecord, _ Env, res *validation.Result) {
	res.Require("program.levelOfStudy", "Level of study", rec.Program.LevelOfStudy)
	res.Require("program.firstChoice", "First choice programme", rec.Program.FirstChoice)

	switch rec.ApplicationType {
	case models.ApplicationTypeUndergraduate:
		s := rec.Education.Secondary
		res.Require("education.secondary.schoolName", "School name", s.SchoolName)
		res.Require("education.secondary.fromDate", "School start date", s.FromDate)
		res.Require("education.secondary.toDate", "School end date", s.ToDate)
		res.Require("education.secondary.subjectsStudied", "Subjects studied", s.SubjectsStudied)
		res.Require("education.secondary.examinationYear", "Examination year", s.ExaminationYear)
		res.Require("education.secondary.resultsYear", "Results year", s.ResultsYear)
		res.Require("education.secondary.gradesAchieved", "Grades achieved", s.GradesAchieved)
	case models.ApplicationTypePostgraduate:
		u := rec.Education.University
		res.Require("education.university.institution", "University or college", u.Institution)
		res.Require("education.university.fromDate", "Study start date", u.FromDate)
		res.Require("education.university.toDate", "Study end date", u.ToDate)
		res.Require("education.university.programme", "Programme", u.Programme)
		res.Require("education.university.qualification", "Qualification", u.Qualification)
		res.Require("education.university.dateOfAward", "Date of award", u.DateOfAward)
		res.Require("education.university.classOfAward", "Class of award", u.ClassOfAward)
	default:
		res.Add("applicationType", validation.CodeMissingRequired, "Application type must be selected")
	}
}

func validateWorkMotivation(rec models.ApplicationRecord, env Env, res *validation.Result) {
	for i, w := range rec.WorkAndMotivation.WorkExperience {
		if w.IsEmpty() {
			continue
		}
		prefix := fmt.Sprintf("workAndMotivation.workExperience[%d]", i)
		res.Require(prefix+".organization", "Organization", w.Organization)
		res.Require(prefix+".position", "Position", w.Position)
	}

	m := rec.WorkAndMotivation.Motivation
	if m.UploadNote {
		if m.Note == nil {
			res.Add("workAndMotivation.motivation.note", validation.CodeMissingRequired, "Upload your motivation note or write the essay instead")
		}
		return
	}

	if !res.Require("workAndMotivation.motivation.essay", "Motivation essay", m.Essay) {
		return
	}
	words := validation.CountWords(m.Essay)
	if words < env.Policy.EssayMinWords || words > env.Policy.EssayMaxWords {
		res.Add("workAndMotivation.motivation.essay", validation.CodeOutOfRange,
			fmt.Sprintf("Motivation essay must be between %d and %d words (currently %d)",
				env.Policy.EssayMinWords, env.Policy.EssayMaxWords, words))
	}
}

func validateSpecialNeeds(rec models.ApplicationRecord, _ Env, res *validation.Result) {
	if rec.SpecialNeeds.HasDisability && strings.TrimSpace(rec.SpecialNeeds.Description) == "" {
		res.Add("specialNeeds.description", validation.CodeMissingRequired, "Please describe the support you need")
	}
}

func validateRefereesDeclaration(rec models.ApplicationRecord, _ Env, res *validation.Result) {
	complete := 0
	for _, r := range rec.Referees {
		if r.IsComplete() {
			complete++
		}
	}

	for i, r := range rec.Referees {
		prefix := fmt.Sprintf("referees[%d]", i)
		if complete < models.MinReferees && !r.IsComplete() {
			res.Require(prefix+".name", "Referee name", r.Name)
			res.Require(prefix+".position", "Referee position", r.Position)
			res.Require(prefix+".institution", "Referee institution", r.Institution)
			res.Require(prefix+".address", "Referee address", r.Address)
			res.Require(prefix+".email", "Referee email", r.Email)
		}
		if r.Email != "" && !validation.ValidateEmail(r.Email) {
			res.Add(prefix+".email", validation.CodeInvalidFormat, "Referee email is not valid")
		}
	}
	if complete < models.MinReferees && len(rec.Referees) < models.MinReferees {
		res.Add("referees", validation.CodeMissingRequired, "At least 2 referees are required")
	}

	d := rec.Declaration
	if !d.Agreed {
		res.Add("declaration.agreed", validation.CodeMissingRequired, "You must accept the declaration")
	}
	res.Require("declaration.fullName", "Full name", d.FullName)
	if !d.AllSectionsCompleted {
		res.Add("declaration.allSectionsCompleted", validation.CodeMissingRequired, "Confirm that all sections are completed")
	}
	if !d.AllDocumentsUploaded {
		res.Add("declaration.allDocumentsUploaded", validation.CodeMissingRequired, "Confirm that all documents are uploaded")
	}
	if !d.DepositSlipAttached {
		res.Add("declaration.depositSlipAttached", validation.CodeMissingRequired, "Confirm that the deposit slip is attached")
	}
}
