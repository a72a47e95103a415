// internal/workers/admission/index-submission/handler.go
package indexsubmission

import (
	"context"
	"time"

	"admission-portal/internal/common/camunda"
	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/metrics"
	"admission-portal/internal/models"
	"admission-portal/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "index-submission"
)

type SubmissionReader interface {
	Get(ctx context.Context, id string) (*models.Submission, error)
}

// Indexer is implemented by store.SubmissionIndex.
type Indexer interface {
	Index(ctx context.Context, doc store.SubmissionDocument) error
	Name() string
}

type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type Handler struct {
	config       *Config
	submissions  SubmissionReader
	index        Indexer
	recorder     JobRecorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, submissions SubmissionReader, index Indexer, recorder JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submissions:  submissions,
		index:        index,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub, err := h.submissions.Get(ctx, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	if err := h.index.Index(ctx, store.NewSubmissionDocument(sub)); err != nil {
		return nil, err
	}

	h.logger.Info("submission indexed", map[string]interface{}{
		"applicationId": sub.ApplicationID,
		"index":         h.index.Name(),
	})
	return &Output{Indexed: true, IndexName: h.index.Name()}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
