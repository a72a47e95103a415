// internal/workers/admission/record-review-decision/models.go
package recordreviewdecision

type Input struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	Decision      string `json:"decision" validate:"required,oneof=review accepted rejected"`
	Comments      string `json:"comments,omitempty"`
	Reviewer      string `json:"reviewer,omitempty"`
}

type Output struct {
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus"`
	DecisionDate   string `json:"decisionDate,omitempty"` // ISO 8601, set for accepted/rejected
}
