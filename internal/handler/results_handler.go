package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-api/internal/dto"
	"github.com/modelarena/arena-api/internal/service"
	"github.com/modelarena/arena-api/internal/utils"
)

// ResultsHandler exposes the derived ranking for a (run, session) pair, as
// JSON or as a CSV export.
type ResultsHandler struct {
	service service.ResultsService
	logger  zerolog.Logger
}

// NewResultsHandler constructs the handler.
func NewResultsHandler(service service.ResultsService, logger zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{
		service: service,
		logger:  logger.With().Str("component", "results_handler").Logger(),
	}
}

// Register wires the results routes under the run group.
func (h *ResultsHandler) Register(router fiber.Router) {
	router.Get("/:id/results", h.results)
}

func (h *ResultsHandler) results(c *fiber.Ctx) error {
	runID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid run id")
	}

	sessionRaw := strings.TrimSpace(c.Query("session_id"))
	if sessionRaw == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "session_id required")
	}
	sessionID, err := strconv.ParseUint(sessionRaw, 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	results, err := h.service.Compute(c.UserContext(), runID, uint(sessionID))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "run not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute results")
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		return h.sendCSV(c, results)
	}

	return utils.SendSuccess(c, "results computed", results)
}

// sendCSV flattens the ranking into one row per (model, criterion) pair.
func (h *ResultsHandler) sendCSV(c *fiber.Ctx, results dto.RunResults) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"rank", "model_id", "model_name", "provider", "total_score", "criterion_id", "criterion_name", "avg_raw", "avg_normalized", "weighted_avg"}
	if err := writer.Write(header); err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export results")
	}

	for rank, model := range results.RankedModels {
		for _, criterion := range model.Criteria {
			row := []string{
				strconv.Itoa(rank + 1),
				strconv.FormatUint(uint64(model.ModelID), 10),
				model.ModelName,
				model.Provider,
				formatScore(model.TotalScore),
				strconv.FormatUint(uint64(criterion.CriterionID), 10),
				criterion.CriterionName,
				formatScore(criterion.AvgRaw),
				formatScore(criterion.AvgNormalized),
				formatScore(criterion.WeightedAvg),
			}
			if err := writer.Write(row); err != nil {
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to export results")
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export results")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=run-%d-session-%d-results.csv", results.RunID, results.SessionID))
	return c.Send(buf.Bytes())
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
