package dto

// ImportRequest is a declarative configuration document: provider targets and
// rating criteria to register in one shot. The document is validated against a
// JSON schema before any row is created.
type ImportRequest struct {
	Models   []ModelCreateRequest     `json:"models"`
	Criteria []CriterionCreateRequest `json:"criteria"`
}

// ImportSummary reports what an import created.
type ImportSummary struct {
	Models   []ModelResponse     `json:"models"`
	Criteria []CriterionResponse `json:"criteria"`
}
