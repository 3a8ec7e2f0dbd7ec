package ml

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"couponcast/features"
)

// Inference is the model's output for one row.
type Inference struct {
	Class       int       `json:"class"`
	Probability *float64  `json:"probability,omitempty"`
	Importances []float64 `json:"importances,omitempty"`
}

// Info describes the loaded model.
type Info struct {
	Type           string   `json:"type"`
	Path           string   `json:"path,omitempty"`
	FeatureNames   []string `json:"feature_names"`
	Classes        []int    `json:"classes"`
	HasProbability bool     `json:"has_probability"`
	HasImportances bool     `json:"has_importances"`
}

// Invoker owns a loaded model for the lifetime of the process. It is never
// mutated after construction and may be shared between goroutines.
type Invoker struct {
	model Classifier
	path  string
	names []string
}

// Open loads the artifact once. On failure it returns a nil Invoker and a
// *ModelLoadError.
func Open(modelType, path string, logger *zap.Logger) (*Invoker, error) {
	model, err := LoadModel(modelType, path)
	if err != nil {
		return nil, err
	}
	inv := NewInvoker(model)
	inv.path = path

	if logger != nil {
		logger.Info("model loaded",
			zap.String("path", path),
			zap.String("type", model.Type()),
			zap.Int("features", len(inv.names)))
		if err := checkColumns(inv.names, features.Names()); err != nil {
			logger.Warn("model columns differ from input schema", zap.Error(err))
		}
	}
	return inv, nil
}

// NewInvoker wraps an in-memory model.
func NewInvoker(model Classifier) *Invoker {
	return &Invoker{model: model, names: model.FeatureNames()}
}

// Info reports the model's type, columns and optional capabilities.
func (inv *Invoker) Info() Info {
	_, proba := inv.model.(ProbabilityEstimator)
	info := Info{
		Type:           inv.model.Type(),
		Path:           inv.path,
		FeatureNames:   append([]string(nil), inv.names...),
		Classes:        inv.model.Classes(),
		HasProbability: proba,
	}
	if ir, ok := inv.model.(ImportanceReporter); ok {
		info.HasImportances = ir.Importances() != nil
	}
	return info
}

// Infer scores one row.
func (inv *Invoker) Infer(row features.Row) (Inference, error) {
	if err := checkColumns(inv.names, row.Names()); err != nil {
		return Inference{}, err
	}
	x := row.Vector()
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Inference{}, predictionErrorf("column %q is not a finite number", inv.names[i])
		}
	}

	class, err := inv.model.Predict(x)
	if err != nil {
		return Inference{}, asPredictionError(err)
	}
	out := Inference{Class: class}

	if pe, ok := inv.model.(ProbabilityEstimator); ok {
		p, err := pe.PredictProba(x)
		switch {
		case errors.Is(err, ErrNoProbability):
		case err != nil:
			return Inference{}, asPredictionError(err)
		case p < 0 || p > 1 || math.IsNaN(p):
			return Inference{}, predictionErrorf("probability %v outside [0, 1]", p)
		default:
			out.Probability = &p
		}
	}
	if ir, ok := inv.model.(ImportanceReporter); ok {
		out.Importances = ir.Importances()
	}
	return out, nil
}

func checkColumns(want, got []string) error {
	if len(want) != len(got) {
		return predictionErrorf("model expects %d columns, row has %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return predictionErrorf("column %d: model expects %q, row has %q", i, want[i], got[i])
		}
	}
	return nil
}

func asPredictionError(err error) error {
	var pe *PredictionError
	if errors.As(err, &pe) {
		return err
	}
	return &PredictionError{Reason: err.Error()}
}
