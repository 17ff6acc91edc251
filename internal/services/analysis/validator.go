package analysis

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/models"
)

// Status classifies a validation outcome.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Degradation reasons. Absence of a stored blob is expected for older calls
// and is not an error; drift means an older schema version matched; malformed
// means no version matched at all.
const (
	ReasonNotYetAnalyzed = "not_yet_analyzed"
	ReasonSchemaDrift    = "schema_drift"
	ReasonMalformed      = "malformed"
)

// ValidatedAnalysis is the outcome of validating one stored analysis blob.
// Value holds the normalized current-shape record, or nil when nothing
// usable could be recovered. A degraded result never fabricates field
// values: fields absent from the source stay at their zero value.
type ValidatedAnalysis struct {
	Kind   string
	Status Status
	Reason string // Set only when degraded
	Value  interface{}
}

// OK reports whether the record validated cleanly against the current schema.
func (v *ValidatedAnalysis) OK() bool {
	return v.Status == StatusOK
}

// Usable reports whether any typed value was recovered, degraded or not.
func (v *ValidatedAnalysis) Usable() bool {
	return v.Value != nil
}

func (v *ValidatedAnalysis) Behavior() *models.BehaviorAnalysis {
	out, _ := v.Value.(*models.BehaviorAnalysis)
	return out
}

func (v *ValidatedAnalysis) Strategy() *models.StrategyAnalysis {
	out, _ := v.Value.(*models.StrategyAnalysis)
	return out
}

func (v *ValidatedAnalysis) Metadata() *models.CallMetadata {
	out, _ := v.Value.(*models.CallMetadata)
	return out
}

func (v *ValidatedAnalysis) Persona() *models.ProspectPersona {
	out, _ := v.Value.(*models.ProspectPersona)
	return out
}

func (v *ValidatedAnalysis) Coaching() *models.CoachingAnalysis {
	out, _ := v.Value.(*models.CoachingAnalysis)
	return out
}

func (v *ValidatedAnalysis) Heat() *models.HeatAnalysis {
	out, _ := v.Value.(*models.HeatAnalysis)
	return out
}

func (v *ValidatedAnalysis) CompetitiveIntel() *models.CompetitiveIntel {
	out, _ := v.Value.(*models.CompetitiveIntel)
	return out
}

// SchemaValidator validates stored per-call analysis blobs against the
// versioned schema family for each analysis kind. Version sensitivity lives
// entirely here: consumers always see the current shape, and records written
// by older pipelines fall back to prior schema versions rather than being
// rejected. The validator never mutates its input.
type SchemaValidator struct {
	validate *validator.Validate
	logger   arbor.ILogger
	schemas  map[string][]schemaVersion
}

// schemaVersion decodes and validates a blob against one historical schema
// shape, normalizing to the current in-memory representation.
type schemaVersion struct {
	name   string
	decode func(v *validator.Validate, raw json.RawMessage) (interface{}, error)
}

func NewSchemaValidator(logger arbor.ILogger) *SchemaValidator {
	return &SchemaValidator{
		validate: validator.New(),
		logger:   logger,
		schemas:  schemaRegistry(),
	}
}

// Validate checks one stored blob for the given analysis kind, trying schema
// versions newest-first. A match against any version older than the current
// one is reported as degraded with reason schema_drift; a blob matching no
// version is degraded with a nil value rather than a hard failure, because
// validation problems must never abort aggregation.
func (s *SchemaValidator) Validate(kind string, raw json.RawMessage) *ValidatedAnalysis {
	if isAbsent(raw) {
		return &ValidatedAnalysis{
			Kind:   kind,
			Status: StatusDegraded,
			Reason: ReasonNotYetAnalyzed,
		}
	}

	versions, known := s.schemas[kind]
	if !known {
		s.logger.Warn().
			Str("kind", kind).
			Msg("Unknown analysis kind, treating record as malformed")
		return &ValidatedAnalysis{
			Kind:   kind,
			Status: StatusDegraded,
			Reason: ReasonMalformed,
		}
	}

	for i, version := range versions {
		value, err := version.decode(s.validate, raw)
		if err != nil {
			continue
		}
		if i == 0 {
			return &ValidatedAnalysis{
				Kind:   kind,
				Status: StatusOK,
				Value:  value,
			}
		}
		s.logger.Debug().
			Str("kind", kind).
			Str("schema", version.name).
			Msg("Analysis record matched an older schema version")
		return &ValidatedAnalysis{
			Kind:   kind,
			Status: StatusDegraded,
			Reason: ReasonSchemaDrift,
			Value:  value,
		}
	}

	s.logger.Warn().
		Str("kind", kind).
		Msg("Analysis record matched no schema version")
	return &ValidatedAnalysis{
		Kind:   kind,
		Status: StatusDegraded,
		Reason: ReasonMalformed,
	}
}

// ValidateAll validates every known analysis kind of one call's stored
// record. Kinds absent from the record come back degraded with
// not_yet_analyzed, which downstream folds simply skip.
func (s *SchemaValidator) ValidateAll(record *models.CallAnalysis) map[string]*ValidatedAnalysis {
	results := make(map[string]*ValidatedAnalysis, len(models.AnalysisKinds))
	for _, kind := range models.AnalysisKinds {
		results[kind] = s.Validate(kind, record.Section(kind))
	}
	return results
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
