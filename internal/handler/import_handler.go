package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-api/internal/service"
	"github.com/modelarena/arena-api/internal/utils"
)

// ImportHandler exposes the declarative configuration import endpoint.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler constructs the handler.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("component", "import_handler").Logger(),
	}
}

// Register wires the import route.
func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("", h.importConfig)
}

func (h *ImportHandler) importConfig(c *fiber.Ctx) error {
	summary, err := h.service.Import(c.UserContext(), c.Body())
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("configuration import rejected")
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "configuration imported", summary)
}
