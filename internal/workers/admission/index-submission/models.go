// internal/workers/admission/index-submission/models.go
package indexsubmission

type Input struct {
	SubmissionID string `json:"submissionId" validate:"required"`
}

type Output struct {
	Indexed   bool   `json:"indexed"`
	IndexName string `json:"indexName"`
}
