package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/modelarena/arena-api/internal/dto"
)

// importSchema constrains configuration documents before any row is created.
// Structural rules live here; semantic rules (known provider, key encryption)
// are enforced by the model and criterion services during creation.
const importSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"models": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "provider", "model_id"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"provider": {"type": "string", "minLength": 1},
					"model_id": {"type": "string", "minLength": 1},
					"temperature": {"type": "number", "minimum": 0, "maximum": 2},
					"max_tokens": {"type": "integer", "minimum": 0},
					"endpoint": {"type": "string"},
					"api_key": {"type": "string"}
				}
			}
		},
		"criteria": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "max_score"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"max_score": {"type": "number", "exclusiveMinimum": 0},
					"weight": {"type": "number", "exclusiveMinimum": 0}
				}
			}
		}
	}
}`

// ImportService loads a declarative configuration document. Creation is not
// transactional: items are created in document order and the first failure
// aborts the import, leaving earlier items in place.
type ImportService interface {
	Import(ctx context.Context, document []byte) (dto.ImportSummary, error)
}

type importService struct {
	models   ModelService
	criteria CriterionService
	schema   *jsonschema.Schema
	logger   zerolog.Logger
}

// NewImportService constructs the import service.
func NewImportService(models ModelService, criteria CriterionService, logger zerolog.Logger) ImportService {
	return &importService{
		models:   models,
		criteria: criteria,
		schema:   jsonschema.MustCompileString("import.json", importSchema),
		logger:   logger.With().Str("component", "import_service").Logger(),
	}
}

func (s *importService) Import(ctx context.Context, document []byte) (dto.ImportSummary, error) {
	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("invalid import document: %w", err)
	}
	if err := s.schema.Validate(raw); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("import document failed validation: %w", err)
	}

	var request dto.ImportRequest
	if err := json.Unmarshal(document, &request); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("invalid import document: %w", err)
	}

	summary := dto.ImportSummary{
		Models:   []dto.ModelResponse{},
		Criteria: []dto.CriterionResponse{},
	}

	for _, payload := range request.Models {
		created, err := s.models.Create(ctx, payload)
		if err != nil {
			return dto.ImportSummary{}, fmt.Errorf("import model %q: %w", payload.Name, err)
		}
		summary.Models = append(summary.Models, created)
	}

	for _, payload := range request.Criteria {
		created, err := s.criteria.Create(ctx, payload)
		if err != nil {
			return dto.ImportSummary{}, fmt.Errorf("import criterion %q: %w", payload.Name, err)
		}
		summary.Criteria = append(summary.Criteria, created)
	}

	s.logger.Info().Int("models", len(summary.Models)).Int("criteria", len(summary.Criteria)).Msg("configuration imported")
	return summary, nil
}
