// internal/workers/admission/notify-applicant/models.go
package notifyapplicant

type Input struct {
	ApplicationID    string `json:"applicationId" validate:"required"`
	NotificationType string `json:"notificationType" validate:"required,oneof=application_submitted application_decision"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone,omitempty"`
	Status           string `json:"status,omitempty" validate:"required_if=NotificationType application_decision"`
	Comments         string `json:"comments,omitempty"`
	ProgramTitle     string `json:"programTitle,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeApplicationSubmitted = "application_submitted"
	TypeApplicationDecision  = "application_decision"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
