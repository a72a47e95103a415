package camunda

import (
	"context"

	"admission-portal/internal/common/logger"
	"admission-portal/internal/models"
)

// InstanceCreator starts BPMN process instances. *Client implements it.
type InstanceCreator interface {
	CreateInstance(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// ReviewVariables are the variables the admission review process starts with.
type ReviewVariables struct {
	SubmissionID    string `json:"submissionId"`
	ApplicationID   string `json:"applicationId"`
	UserKey         string `json:"userKey"`
	ApplicationType string `json:"applicationType"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ProgramTitle    string `json:"programTitle"`
	Faculty         string `json:"faculty"`
}

func NewReviewVariables(sub *models.Submission) ReviewVariables {
	p := sub.Record.Personal
	return ReviewVariables{
		SubmissionID:    sub.ID,
		ApplicationID:   sub.ApplicationID,
		UserKey:         sub.UserKey,
		ApplicationType: string(sub.ApplicationType),
		Email:           p.EmailAddress,
		Phone:           p.TelephoneNumbers,
		ProgramTitle:    sub.ProgramTitle,
		Faculty:         sub.Faculty,
	}
}

// ProcessStarter starts the review process for every new submission. It is
// installed on the wizard as a submission hook.
type ProcessStarter struct {
	creator   InstanceCreator
	processID string
	logger    logger.Logger
}

func NewProcessStarter(creator InstanceCreator, processID string, log logger.Logger) *ProcessStarter {
	return &ProcessStarter{
		creator:   creator,
		processID: processID,
		logger:    log.WithFields(map[string]interface{}{"processId": processID}),
	}
}

func (p *ProcessStarter) SubmissionCreated(ctx context.Context, sub *models.Submission) error {
	key, err := p.creator.CreateInstance(ctx, p.processID, NewReviewVariables(sub))
	if err != nil {
		p.logger.Error("failed to start review process", map[string]interface{}{
			"applicationId": sub.ApplicationID,
			"error":         err.Error(),
		})
		return err
	}
	p.logger.Info("review process started", map[string]interface{}{
		"applicationId":      sub.ApplicationID,
		"processInstanceKey": key,
	})
	return nil
}
