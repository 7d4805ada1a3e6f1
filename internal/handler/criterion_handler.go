package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/service"
	"github.com/modelarena/arena-api/internal/utils"
)

// CriterionHandler exposes rating criterion configuration endpoints.
type CriterionHandler struct {
	service service.CriterionService
	logger  zerolog.Logger
}

// NewCriterionHandler constructs the handler.
func NewCriterionHandler(service service.CriterionService, logger zerolog.Logger) *CriterionHandler {
	return &CriterionHandler{
		service: service,
		logger:  logger.With().Str("component", "criterion_handler").Logger(),
	}
}

// Register wires criterion configuration routes.
func (h *CriterionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CriterionHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list criteria")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list criteria")
	}
	return utils.SendSuccess(c, "criteria retrieved", items)
}

func (h *CriterionHandler) create(c *fiber.Ctx) error {
	var payload dto.CriterionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create criterion")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create criterion")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "criterion created", created)
}

func (h *CriterionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid criterion id")
	}

	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrCriterionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "criterion not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch criterion")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch criterion")
	}

	return utils.SendSuccess(c, "criterion retrieved", item)
}

func (h *CriterionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid criterion id")
	}

	var payload dto.CriterionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCriterionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "criterion not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update criterion")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update criterion")
	}

	return utils.SendSuccess(c, "criterion updated", updated)
}

func (h *CriterionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid criterion id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrCriterionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "criterion not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete criterion")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete criterion")
	}

	return utils.SendSuccess(c, "criterion deleted", nil)
}
