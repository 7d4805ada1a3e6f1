package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/service"
	"github.com/modelarena/arena-api/internal/utils"
)

// ScoringHandler exposes the blind-scoring endpoints.
type ScoringHandler struct {
	service service.ScoringService
	logger  zerolog.Logger
}

// NewScoringHandler constructs the handler.
func NewScoringHandler(service service.ScoringService, logger zerolog.Logger) *ScoringHandler {
	return &ScoringHandler{
		service: service,
		logger:  logger.With().Str("component", "scoring_handler").Logger(),
	}
}

// RegisterRunRoutes wires the session endpoints that hang off a run.
func (h *ScoringHandler) RegisterRunRoutes(router fiber.Router) {
	router.Get("/:id/sessions", h.listSessions)
	router.Post("/:id/sessions", h.createSession)
}

// RegisterSessionRoutes wires the session-scoped endpoints.
func (h *ScoringHandler) RegisterSessionRoutes(router fiber.Router) {
	router.Get("/:id/pool", h.blindPool)
	router.Get("/:id/scores", h.listScores)
	router.Post("/:id/scores", h.score)
}

func (h *ScoringHandler) createSession(c *fiber.Ctx) error {
	runID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid run id")
	}

	session, err := h.service.CreateSession(c.UserContext(), runID)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "run not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create scoring session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create scoring session")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "scoring session created", session)
}

func (h *ScoringHandler) listSessions(c *fiber.Ctx) error {
	runID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid run id")
	}

	sessions, err := h.service.ListSessions(c.UserContext(), runID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list scoring sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list scoring sessions")
	}

	return utils.SendSuccess(c, "scoring sessions retrieved", sessions)
}

func (h *ScoringHandler) blindPool(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	pool, err := h.service.BlindPool(c.UserContext(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "scoring session not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build blind pool")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build blind pool")
	}

	return utils.SendSuccess(c, "blind pool retrieved", pool)
}

func (h *ScoringHandler) listScores(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	scores, err := h.service.SessionScores(c.UserContext(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "scoring session not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list scores")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list scores")
	}

	return utils.SendSuccess(c, "scores retrieved", scores)
}

func (h *ScoringHandler) score(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	var payload dto.ScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	score, err := h.service.ScoreResponse(c.UserContext(), sessionID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "scoring session not found")
		case errors.Is(err, service.ErrResponseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "response not found")
		case errors.Is(err, service.ErrDuplicateScore):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrResponseNotInRun),
			errors.Is(err, service.ErrResponseNotScoreable),
			errors.Is(err, service.ErrCriterionNotInRun):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to record score")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record score")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "score recorded", score)
}
