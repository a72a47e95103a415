package camunda

import (
	"context"
	"encoding/json"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/logger"
	"admission-portal/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// DecodeVariables unmarshals job variables into input and applies its
// `validate` tags.
func DecodeVariables(job entities.Job, input interface{}) error {
	if err := json.Unmarshal([]byte(job.Variables), input); err != nil {
		return errors.NewInvalidPayloadError([]errors.FieldError{{
			Field:   "variables",
			Code:    validation.CodeInvalidFormat,
			Message: err.Error(),
		}})
	}
	if fields := validation.ValidateStruct(input); len(fields) > 0 {
		return errors.NewInvalidPayloadError(fields)
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}
