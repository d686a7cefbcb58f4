// internal/workers/resources/filter-resources/handler.go
package filterresources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/common/metrics"
	"resource-workers/internal/common/observability"
	"resource-workers/internal/common/validation"
	"resource-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "filter-resources"

type Filter interface {
	FilterResources(req matching.Request, maxResults int) (*matching.FilterResult, error)
}

type Handler struct {
	config       *Config
	filter       Filter
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, filter Filter, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		filter:       filter,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
			h.obs.RecordJobProcessed(ctx, TaskType, "completed")
			h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
			return
		}
	}

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func parseInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("parse job variables: %v", err))
	}
	if result := validation.ValidateMatchRequest(doc); !result.Valid {
		return nil, errors.NewInvalidMatchRequestError(result.Summary()).
			WithMetadata("errors", result.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode input: %v", err))
	}
	return &input, nil
}

// Execute runs the direct filter. An empty language is treated as English by
// the engine.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidMatchRequestError("input cannot be nil")
	}

	maxResults := h.config.DefaultMaxResults
	if input.MaxResults != nil {
		maxResults = *input.MaxResults
	}

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.String("language", input.Language),
		attribute.String("zipcode", input.Zipcode),
		attribute.String("category", input.Category),
		attribute.Int("maxResults", maxResults),
	)
	defer span.End()

	result, err := h.filter.FilterResources(input.toRequest(), maxResults)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("filterMode", result.Mode),
		attribute.Int("matchCount", len(result.Matches)),
	)
	h.obs.RecordMatches(ctx, matching.ModeFilter, len(result.Matches))

	if result.Mode != matching.FilterStrict {
		h.logger.Debug("filter broadened", map[string]interface{}{
			"filterMode": result.Mode,
			"category":   input.Category,
		})
	}

	return &Output{
		MatchRequestID: uuid.NewString(),
		Matches:        result.Matches,
		MatchCount:     len(result.Matches),
		FilterMode:     result.Mode,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"filterMode": output.FilterMode,
		"matchCount": output.MatchCount,
	})
}
