// internal/models/submission.go
package models

import "time"

type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusReview    SubmissionStatus = "review"
	StatusAccepted  SubmissionStatus = "accepted"
	StatusRejected  SubmissionStatus = "rejected"
)

// Draft list statuses reported alongside submissions.
const (
	DraftStatusIncomplete = "incomplete"
	DraftStatusComplete   = "draft"
)

var statusTransitions = map[SubmissionStatus][]SubmissionStatus{
	StatusSubmitted: {StatusReview, StatusAccepted, StatusRejected},
	StatusReview:    {StatusAccepted, StatusRejected},
}

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusReview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a final admission decision.
func (s SubmissionStatus) IsDecision() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether a submission may move from s to next.
func (s SubmissionStatus) CanTransition(next SubmissionStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Draft is the persisted form of an in-progress application.
type Draft struct {
	ID                   string            `json:"id"`
	UserKey              string            `json:"userKey"`
	ApplicationType      ApplicationType   `json:"applicationType"`
	Record               ApplicationRecord `json:"record"`
	CompletionPercentage int               `json:"completionPercentage"`
	ProgramTitle         string            `json:"programTitle"`
	ProgramSlug          string            `json:"programSlug"`
	Faculty              string            `json:"faculty"`
	LastSavedAt          time.Time         `json:"lastSavedAt"`
}

// ListStatus is the status shown for the draft in an applicant's list.
func (d Draft) ListStatus() string {
	if d.CompletionPercentage < 100 {
		return DraftStatusIncomplete
	}
	return DraftStatusComplete
}

// Submission is a finalized application. It is never edited after creation
// apart from its review status.
type Submission struct {
	ID              string            `json:"id"`
	ApplicationID   string            `json:"applicationId"`
	UserKey         string            `json:"userKey"`
	ApplicationType ApplicationType   `json:"applicationType"`
	Record          ApplicationRecord `json:"record"`
	Status          SubmissionStatus  `json:"status"`
	ProgramTitle    string            `json:"programTitle"`
	ProgramSlug     string            `json:"programSlug"`
	Faculty         string            `json:"faculty"`
	SubmittedAt     time.Time         `json:"submittedAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	ReviewComments  string            `json:"reviewComments,omitempty"`
	ReviewedBy      string            `json:"reviewedBy,omitempty"`
	DecisionDate    *time.Time        `json:"decisionDate,omitempty"`
}

// StatusChange is one review decision applied to a submission.
type StatusChange struct {
	ApplicationID string
	Status        SubmissionStatus
	Comments      string
	ReviewedBy    string
	At            time.Time
}

// ApplicationSummary is one row of an applicant's "my applications" list.
type ApplicationSummary struct {
	ID                   string          `json:"id"`
	Kind                 string          `json:"kind"` // "draft" or "submission"
	ApplicationType      ApplicationType `json:"applicationType"`
	ProgramTitle         string          `json:"programTitle"`
	Faculty              string          `json:"faculty"`
	Status               string          `json:"status"`
	CompletionPercentage int             `json:"completionPercentage"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// SubmissionStats backs the admin dashboard counters.
type SubmissionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// SubmissionFilter narrows a submission listing.
type SubmissionFilter struct {
	UserKey string
	Status  SubmissionStatus
	Limit   int
	Offset  int
}
