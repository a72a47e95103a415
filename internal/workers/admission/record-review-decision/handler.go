// internal/workers/admission/record-review-decision/handler.go
package recordreviewdecision

import (
	"context"
	"time"

	"admission-portal/internal/common/camunda"
	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/metrics"
	"admission-portal/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-review-decision"
)

type ReviewStore interface {
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, change models.StatusChange) (*models.Submission, error)
}

type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type Handler struct {
	config       *Config
	store        ReviewStore
	recorder     JobRecorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store ReviewStore, recorder JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		recorder:     recorder,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
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

// execute applies the decision. Transitions out of a final status come back
// as INVALID_STATUS_TRANSITION, which the error handler throws as a BPMN
// error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	current, err := h.store.GetByApplicationID(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	updated, err := h.store.UpdateStatus(ctx, models.StatusChange{
		ApplicationID: input.ApplicationID,
		Status:        models.SubmissionStatus(input.Decision),
		Comments:      input.Comments,
		ReviewedBy:    input.Reviewer,
	})
	if err != nil {
		return nil, err
	}
	metrics.ReviewDecisions.WithLabelValues(string(updated.Status)).Inc()

	out := &Output{
		Status:         string(updated.Status),
		PreviousStatus: string(current.Status),
	}
	if updated.DecisionDate != nil {
		out.DecisionDate = updated.DecisionDate.UTC().Format(time.RFC3339)
	}

	h.logger.Info("review decision recorded", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"status":         out.Status,
		"previousStatus": out.PreviousStatus,
		"reviewer":       input.Reviewer,
	})
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
