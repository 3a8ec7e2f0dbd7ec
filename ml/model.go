package ml

import "errors"

const (
	TypeLogisticRegression = "logistic_regression"
	TypeDecisionTree       = "decision_tree"
)

// ErrNoProbability is returned by PredictProba when the artifact carries no
// class distribution.
var ErrNoProbability = errors.New("model exposes no class probabilities")

// Classifier is a trained binary classifier loaded from an artifact.
type Classifier interface {
	Type() string
	FeatureNames() []string
	Classes() []int
	Predict(features []float64) (int, error)
}

// ProbabilityEstimator is implemented by classifiers that report the
// probability of the positive class (Classes()[1]).
type ProbabilityEstimator interface {
	PredictProba(features []float64) (float64, error)
}

// ImportanceReporter is implemented by classifiers that expose one weight
// per feature. A nil slice means the artifact carries none.
type ImportanceReporter interface {
	Importances() []float64
}

type artifactHeader struct {
	ModelType    string   `json:"model_type"`
	FeatureNames []string `json:"feature_names"`
	Classes      []int    `json:"classes"`
}

func (h artifactHeader) validate(width int) error {
	if len(h.FeatureNames) == 0 {
		return errors.New("artifact has no feature_names")
	}
	if len(h.Classes) != 2 {
		return errors.New("artifact must declare exactly two classes")
	}
	if width >= 0 && width != len(h.FeatureNames) {
		return errors.New("artifact weights do not match feature_names")
	}
	return nil
}

func copyFloats(values []float64) []float64 {
	if values == nil {
		return nil
	}
	return append([]float64(nil), values...)
}
