package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/service"
	"github.com/modelarena/arena-api/internal/utils"
	"github.com/modelarena/arena-api/pkg/llm"
)

// ModelHandler exposes provider target configuration endpoints.
type ModelHandler struct {
	service service.ModelService
	logger  zerolog.Logger
}

// NewModelHandler constructs the handler.
func NewModelHandler(service service.ModelService, logger zerolog.Logger) *ModelHandler {
	return &ModelHandler{
		service: service,
		logger:  logger.With().Str("component", "model_handler").Logger(),
	}
}

// Register wires model configuration routes.
func (h *ModelHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ModelHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list models")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list models")
	}
	return utils.SendSuccess(c, "models retrieved", items)
}

func (h *ModelHandler) create(c *fiber.Ctx) error {
	var payload dto.ModelCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, llm.ErrUnknownProvider) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create model")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create model")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "model created", created)
}

func (h *ModelHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid model id")
	}

	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "model not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch model")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch model")
	}

	return utils.SendSuccess(c, "model retrieved", item)
}

func (h *ModelHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid model id")
	}

	var payload dto.ModelUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrModelNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "model not found")
		case isValidationError(err) || errors.Is(err, llm.ErrUnknownProvider):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update model")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update model")
	}

	return utils.SendSuccess(c, "model updated", updated)
}

func (h *ModelHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid model id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "model not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete model")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete model")
	}

	return utils.SendSuccess(c, "model deleted", nil)
}
