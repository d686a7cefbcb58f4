// internal/workers/resources/format-resource-response/handler.go
package formatresourceresponse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/common/metrics"
	"resource-workers/internal/common/observability"
	"resource-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "format-resource-response"

// Formatting is pure, so the handler has no config beyond the job timeout.
const defaultTimeout = 10 * time.Second

type Handler struct {
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err == nil {
		output := h.Execute(ctx, input)
		cmd, cmdErr := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
		if cmdErr == nil {
			_, cmdErr = cmd.Send(ctx)
		}
		if cmdErr != nil {
			h.logger.Error("failed to complete job", map[string]interface{}{
				"jobKey": job.Key,
				"error":  cmdErr,
			})
			return
		}

		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
		h.obs.RecordJobProcessed(ctx, TaskType, "completed")
		h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
		h.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
		return
	}

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func parseInput(variables string) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode input: %v", err))
	}
	return &input, nil
}

// Execute never fails: no matches produce the localized apology.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	_, span := h.obs.StartSpan(ctx, TaskType,
		attribute.String("language", input.Language),
		attribute.Int("matchCount", len(input.Matches)),
	)
	defer span.End()

	return &Output{ResponseText: matching.FormatResourceResponse(input.Matches, input.Language)}
}
