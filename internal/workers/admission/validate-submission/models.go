// internal/workers/admission/validate-submission/models.go
package validatesubmission

import "admission-portal/internal/common/errors"

type Input struct {
	SubmissionID string `json:"submissionId" validate:"required"`
}

type Output struct {
	ApplicationID    string              `json:"applicationId"`
	IsValid          bool                `json:"isValid"`
	InvalidSteps     []string            `json:"invalidSteps"`
	ValidationErrors []errors.FieldError `json:"validationErrors"`
}
