package wizard

import "admission-portal/internal/models"

// Step names a page of the application form.
type Step string

const (
	StepPersonal            Step = "personal"
	StepProgrammeEducation  Step = "programme-education"
	StepWorkMotivation      Step = "work-motivation"
	StepSpecialNeeds        Step = "special-needs"
	StepRefereesDeclaration Step = "referees-declaration"
)

// UnknownStepTitle is returned for step numbers outside the sequence.
const UnknownStepTitle = "Unknown Step"

var stepTitles = map[Step]string{
	StepPersonal:            "Personal Information",
	StepProgrammeEducation:  "Programme & Education",
	StepWorkMotivation:      "Work Experience & Motivation",
	StepSpecialNeeds:        "Special Needs",
	StepRefereesDeclaration: "Referees & Declaration",
}

var stepSequences = map[models.ApplicationType][]Step{
	models.ApplicationTypeUndergraduate: {
		StepPersonal,
		StepProgrammeEducation,
		StepSpecialNeeds,
		StepRefereesDeclaration,
	},
	models.ApplicationTypePostgraduate: {
		StepPersonal,
		StepProgrammeEducation,
		StepWorkMotivation,
		StepSpecialNeeds,
		StepRefereesDeclaration,
	},
}

func (s Step) Title() string {
	if title, ok := stepTitles[s]; ok {
		return title
	}
	return UnknownStepTitle
}

// Steps returns the ordered steps for an application type. An unset type has none.
func Steps(t models.ApplicationType) []Step {
	return append([]Step(nil), stepSequences[t]...)
}

func TotalSteps(t models.ApplicationType) int {
	return len(stepSequences[t])
}

// StepAt resolves a 1-based step number.
func StepAt(t models.ApplicationType, n int) (Step, bool) {
	seq := stepSequences[t]
	if n < 1 || n > len(seq) {
		return "", false
	}
	return seq[n-1], true
}

// StepTitle never fails: numbers outside [1, TotalSteps] yield UnknownStepTitle.
func StepTitle(t models.ApplicationType, n int) string {
	step, ok := StepAt(t, n)
	if !ok {
		return UnknownStepTitle
	}
	return step.Title()
}

// StepNumber is the inverse of StepAt; it returns 0 when the step is not part
// of the type's sequence.
func StepNumber(t models.ApplicationType, step Step) int {
	for i, s := range stepSequences[t] {
		if s == step {
			return i + 1
		}
	}
	return 0
}
