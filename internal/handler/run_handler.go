package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/service"
	"github.com/modelarena/arena-api/internal/utils"
)

// RunHandler exposes the run lifecycle endpoints, including the websocket
// progress stream for executing runs.
type RunHandler struct {
	service service.RunService
	events  service.RunEventService
	logger  zerolog.Logger
}

// NewRunHandler constructs the handler.
func NewRunHandler(service service.RunService, events service.RunEventService, logger zerolog.Logger) *RunHandler {
	return &RunHandler{
		service: service,
		events:  events,
		logger:  logger.With().Str("component", "run_handler").Logger(),
	}
}

// Register wires run routes.
func (h *RunHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/execute", h.execute)

	router.Use("/:id/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/stream", websocket.New(h.stream))
}

func (h *RunHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list runs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list runs")
	}
	return utils.SendSuccess(c, "runs retrieved", items)
}

func (h *RunHandler) create(c *fiber.Ctx) error {
	var payload dto.RunCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create run")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create run")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "run created", created)
}

func (h *RunHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid run id")
	}

	detail, err := h.service.GetWithDetails(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "run not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch run")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch run")
	}

	return utils.SendSuccess(c, "run retrieved", detail)
}

func (h *RunHandler) execute(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid run id")
	}

	detail, err := h.service.Execute(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "run not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to execute run")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to execute run")
	}

	return utils.SendSuccess(c, "run executed", detail)
}

// stream forwards run progress events over the websocket until the run
// completes or the client disconnects.
func (h *RunHandler) stream(conn *websocket.Conn) {
	defer conn.Close()

	id, err := strconv.ParseUint(conn.Params("id"), 10, 64)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid run id"))
		return
	}
	runID := uint(id)

	events, cancel := h.events.Subscribe(runID)
	defer cancel()

	// Drain reads so client close frames are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Info().Uint("run_id", runID).Msg("run stream connected")
	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Type == service.RunEventCompleted {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run completed"))
				return
			}
		}
	}
}
