// internal/workers/admission/validate-submission/handler.go
package validatesubmission

import (
	"context"
	"time"

	"admission-portal/internal/common/camunda"
	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/metrics"
	"admission-portal/internal/models"
	"admission-portal/internal/wizard"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-submission"
)

type SubmissionReader interface {
	Get(ctx context.Context, id string) (*models.Submission, error)
}

type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type Handler struct {
	config       *Config
	submissions  SubmissionReader
	recorder     JobRecorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, submissions SubmissionReader, recorder JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submissions:  submissions,
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

// execute re-runs every step rule of the submitted record. Rule failures are
// reported in the output, not as job errors, so the process can route on
// isValid.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub, err := h.submissions.Get(ctx, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	env := wizard.Env{Policy: h.config.Policy, Now: sub.SubmittedAt}
	out := &Output{
		ApplicationID:    sub.ApplicationID,
		InvalidSteps:     []string{},
		ValidationErrors: []errors.FieldError{},
	}

	steps := wizard.Steps(sub.ApplicationType)
	if len(steps) == 0 {
		out.InvalidSteps = append(out.InvalidSteps, "application-type")
		out.ValidationErrors = append(out.ValidationErrors, errors.FieldError{
			Field:   "applicationType",
			Code:    "INVALID_INPUT",
			Message: "Application type is not recognised",
		})
	}
	for _, step := range steps {
		if fields := wizard.ValidateStep(sub.Record, step, env); len(fields) > 0 {
			out.InvalidSteps = append(out.InvalidSteps, string(step))
			out.ValidationErrors = append(out.ValidationErrors, fields...)
		}
	}
	out.IsValid = len(out.ValidationErrors) == 0

	h.logger.Info("validation completed", map[string]interface{}{
		"applicationId": sub.ApplicationID,
		"isValid":       out.IsValid,
		"errorCount":    len(out.ValidationErrors),
	})
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
