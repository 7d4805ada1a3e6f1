package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/observability"
	"github.com/modelarena/arena-api/internal/repository"
	"github.com/modelarena/arena-api/internal/secrets"
	"github.com/modelarena/arena-api/pkg/llm"
)

// ErrRunNotFound indicates the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// CompleterResolver maps a provider name to its adapter. Injectable so tests
// can substitute stub adapters; defaults to llm.ForProvider.
type CompleterResolver func(provider string) (llm.Completer, error)

// RunExecutorConfig carries the hardening knobs for run execution. Zero
// values preserve the default behaviour: no per-call timeout and no cap on
// simultaneous in-flight calls.
type RunExecutorConfig struct {
	CallTimeout  time.Duration
	MaxInFlight  int64
	FallbackKeys map[string]string
}

// RunService exposes the run lifecycle: create, execute, list, inspect.
type RunService interface {
	Create(ctx context.Context, payload dto.RunCreateRequest) (dto.RunResponse, error)
	Execute(ctx context.Context, runID uint) (dto.RunDetailResponse, error)
	Get(ctx context.Context, id uint) (dto.RunResponse, error)
	GetWithDetails(ctx context.Context, id uint) (dto.RunDetailResponse, error)
	List(ctx context.Context) ([]dto.RunResponse, error)
}

type runService struct {
	runs      repository.RunRepository
	responses repository.ResponseRepository
	keystore  *secrets.Keystore
	events    RunEventService
	resolver  CompleterResolver
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	config    RunExecutorConfig
}

// NewRunService constructs the run service. A nil resolver falls back to the
// built-in provider registry.
func NewRunService(runRepo repository.RunRepository, responseRepo repository.ResponseRepository, keystore *secrets.Keystore, events RunEventService, resolver CompleterResolver, validate *validator.Validate, logger zerolog.Logger, cfg RunExecutorConfig) RunService {
	if resolver == nil {
		resolver = llm.ForProvider
	}

	return &runService{
		runs:      runRepo,
		responses: responseRepo,
		keystore:  keystore,
		events:    events,
		resolver:  resolver,
		validator: validate,
		logger:    logger.With().Str("component", "run_service").Logger(),
		tracer:    otel.Tracer("github.com/modelarena/arena-api/internal/service/run"),
		config:    cfg,
	}
}

// Create persists the run and its snapshot link rows. Nothing is validated
// beyond the payload shape; empty model and criterion sets are legal and the
// run is not executed.
func (s *runService) Create(ctx context.Context, payload dto.RunCreateRequest) (dto.RunResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RunResponse{}, err
	}

	repetitions := payload.RepetitionCount
	if repetitions < 1 {
		repetitions = 1
	}

	run := models.Run{
		Prompt:          payload.Prompt,
		RepetitionCount: repetitions,
	}
	for _, id := range payload.ModelIDs {
		run.Models = append(run.Models, models.RunModel{ModelID: id})
	}
	for _, id := range payload.CriterionIDs {
		run.Criteria = append(run.Criteria, models.RunCriterion{CriterionID: id})
	}

	if err := s.runs.Create(ctx, &run); err != nil {
		return dto.RunResponse{}, err
	}

	s.logger.Info().Uint("run_id", run.ID).Int("models", len(run.Models)).Int("repetitions", repetitions).Msg("run created")
	return dto.NewRunResponse(run), nil
}

// callTarget is one model's resolved execution context: adapter and
// plaintext credential, both resolved exactly once per model per execution.
type callTarget struct {
	model    models.Model
	adapter  llm.Completer
	apiKey   string
	resolved error
}

// Execute dispatches repetitionCount calls for every model in the run's
// snapshot, all concurrently, and persists each outcome as its own response
// row the moment the call resolves. Individual call failures never propagate
// and never affect sibling calls; the only error condition is a missing run.
func (s *runService) Execute(parent context.Context, runID uint) (dto.RunDetailResponse, error) {
	ctx, span := s.tracer.Start(parent, "run.execute", trace.WithAttributes(
		attribute.Int("run_id", int(runID)),
	))
	defer span.End()

	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RunDetailResponse{}, ErrRunNotFound
		}
		return dto.RunDetailResponse{}, err
	}

	total := len(run.Models) * run.RepetitionCount
	targets := s.resolveTargets(run)

	var sem *semaphore.Weighted
	if s.config.MaxInFlight > 0 {
		sem = semaphore.NewWeighted(s.config.MaxInFlight)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for _, target := range targets {
		for rep := 0; rep < run.RepetitionCount; rep++ {
			wg.Add(1)
			go func(target callTarget) {
				defer wg.Done()

				response := s.invoke(ctx, run, target, sem)
				if err := s.responses.Create(ctx, &response); err != nil {
					s.logger.Error().Err(err).Uint("run_id", run.ID).Uint("model_id", target.model.ID).Msg("failed to persist response")
					return
				}

				outcome := "success"
				if response.ErrorMsg != nil {
					outcome = "error"
				}
				observability.ResponsesPersisted().WithLabelValues(outcome).Inc()

				mu.Lock()
				done++
				count := done
				mu.Unlock()

				if s.events != nil {
					s.events.Publish(RunEvent{
						RunID:      run.ID,
						Type:       RunEventResponse,
						ResponseID: response.ID,
						ModelID:    target.model.ID,
						Failed:     response.ErrorMsg != nil,
						Persisted:  count,
						Total:      total,
					})
				}
			}(target)
		}
	}

	wg.Wait()
	observability.RunsExecuted().Inc()

	if s.events != nil {
		s.events.Publish(RunEvent{
			RunID:     run.ID,
			Type:      RunEventCompleted,
			Persisted: total,
			Total:     total,
		})
	}

	s.logger.Info().Uint("run_id", run.ID).Int("responses", total).Msg("run executed")
	return s.GetWithDetails(ctx, runID)
}

// resolveTargets resolves each model's adapter and credential exactly once.
// Credential resolution failure degrades to an empty key and the adapter
// decides whether that is fatal; adapter resolution failure is carried into
// the target so every repetition records it as a normal per-call failure.
func (s *runService) resolveTargets(run models.Run) []callTarget {
	targets := make([]callTarget, 0, len(run.Models))
	for _, link := range run.Models {
		target := callTarget{model: link.Model}

		adapter, err := s.resolver(link.Model.Provider)
		if err != nil {
			target.resolved = err
			targets = append(targets, target)
			continue
		}
		target.adapter = adapter

		if link.Model.HasCredential() && s.keystore != nil {
			key, err := s.keystore.Decrypt(link.Model.APIKeyCiphertext)
			if err != nil {
				s.logger.Warn().Err(err).Uint("model_id", link.Model.ID).Msg("credential resolution failed, proceeding without key")
			} else {
				target.apiKey = key
			}
		}
		if target.apiKey == "" {
			target.apiKey = s.config.FallbackKeys[link.Model.Provider]
		}

		targets = append(targets, target)
	}
	return targets
}

// invoke performs one provider call and shapes the outcome into a response
// row. Content and ErrorMsg are mutually exclusive by construction.
func (s *runService) invoke(ctx context.Context, run models.Run, target callTarget, sem *semaphore.Weighted) models.Response {
	response := models.Response{
		RunID:   run.ID,
		ModelID: target.model.ID,
	}

	fail := func(err error) models.Response {
		msg := err.Error()
		response.ErrorMsg = &msg
		return response
	}

	if target.resolved != nil {
		return fail(target.resolved)
	}

	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fail(err)
		}
		defer sem.Release(1)
	}

	callCtx := ctx
	if s.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.config.CallTimeout)
		defer cancel()
	}

	observability.CallsInFlight().Inc()
	defer observability.CallsInFlight().Dec()

	completion, err := target.adapter.Complete(callCtx, llm.CompletionRequest{
		Model:       target.model.ModelID,
		Prompt:      run.Prompt,
		APIKey:      target.apiKey,
		Endpoint:    target.model.Endpoint,
		Temperature: target.model.Temperature,
		MaxTokens:   target.model.MaxTokens,
	})
	if err != nil {
		return fail(err)
	}

	content := completion.Content
	tokens := completion.TokensUsed
	latency := completion.LatencyMs
	response.Content = &content
	response.TokensUsed = &tokens
	response.LatencyMs = &latency
	if completion.Raw != nil {
		response.Raw = datatypes.JSONMap(completion.Raw)
	}

	return response
}

func (s *runService) Get(ctx context.Context, id uint) (dto.RunResponse, error) {
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RunResponse{}, ErrRunNotFound
		}
		return dto.RunResponse{}, err
	}
	return dto.NewRunResponse(run), nil
}

func (s *runService) GetWithDetails(ctx context.Context, id uint) (dto.RunDetailResponse, error) {
	run, err := s.runs.GetWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RunDetailResponse{}, ErrRunNotFound
		}
		return dto.RunDetailResponse{}, err
	}
	return dto.NewRunDetailResponse(run), nil
}

func (s *runService) List(ctx context.Context) ([]dto.RunResponse, error) {
	runs, err := s.runs.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RunResponse, 0, len(runs))
	for _, run := range runs {
		items = append(items, dto.NewRunResponse(run))
	}
	return items, nil
}
