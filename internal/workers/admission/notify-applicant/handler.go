// internal/workers/admission/notify-applicant/handler.go
package notifyapplicant

import (
	"context"
	"fmt"
	"time"

	"admission-portal/internal/common/camunda"
	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-applicant"
)

// EmailSender is implemented by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// SMSSender is implemented by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSSender
	recorder     JobRecorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, recorder JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		email:        email,
		sms:          sms,
		recorder:     recorder,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	if err := camunda.CompleteJob(client, job, output, h.logger); err != nil {
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.recorder.RecordJob(ctx, TaskType, metrics.ResultSuccess, time.Since(start))
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	code := string(errors.ErrCodeInternal)
	if se, ok := errors.AsStandard(err); ok {
		code = string(se.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.recorder.RecordJob(ctx, TaskType, metrics.ResultFailure, time.Since(start))
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// execute sends the e-mail, and for decisions an SMS as well. A failed e-mail
// fails the job so it is retried; a failed SMS only marks the notification
// as failed.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	msg, ok := messages[input.NotificationType]
	if !ok {
		return nil, errors.NewInvalidPayloadError([]errors.FieldError{{
			Field:   "notificationType",
			Code:    "INVALID_FORMAT",
			Message: fmt.Sprintf("unknown notification type %q", input.NotificationType),
		}})
	}

	if h.config.EmailEnabled && h.email != nil && input.Email != "" {
		subject, err := render(msg.subject, input)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		body, err := render(msg.body, input)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if _, err := h.email.SendEmail(ctx, input.Email, subject, body); err != nil {
			return nil, errors.NewNotificationSendFailedError(input.NotificationType, err)
		}
		out.Status = StatusSent
	}

	if h.config.SMSEnabled && h.sms != nil && input.Phone != "" && msg.sms != nil {
		text, err := render(msg.sms, input)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if _, err := h.sms.SendSMS(ctx, input.Phone, text); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err.Error(),
			})
			out.Status = StatusFailed
		} else {
			out.Status = StatusSent
		}
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"applicationId":    input.ApplicationID,
		"notificationType": input.NotificationType,
		"status":           out.Status,
	})
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
