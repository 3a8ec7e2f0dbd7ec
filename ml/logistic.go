package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

// Scaler standardizes inputs before the linear term.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LogisticRegression is a binary logistic model.
type LogisticRegression struct {
	featureNames []string
	classes      []int
	coefficients []float64
	intercept    float64
	scaler       *Scaler
}

type logisticArtifact struct {
	artifactHeader
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Scaler       *Scaler   `json:"scaler,omitempty"`
}

// NewLogisticRegression builds a model from already-trained weights.
func NewLogisticRegression(featureNames []string, classes []int, coefficients []float64, intercept float64, scaler *Scaler) (*LogisticRegression, error) {
	art := logisticArtifact{
		artifactHeader: artifactHeader{ModelType: TypeLogisticRegression, FeatureNames: featureNames, Classes: classes},
		Coefficients:   coefficients,
		Intercept:      intercept,
		Scaler:         scaler,
	}
	m := &LogisticRegression{}
	if err := m.apply(art); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LogisticRegression) Type() string { return TypeLogisticRegression }

func (m *LogisticRegression) FeatureNames() []string {
	return append([]string(nil), m.featureNames...)
}

func (m *LogisticRegression) Classes() []int {
	return append([]int(nil), m.classes...)
}

func (m *LogisticRegression) Importances() []float64 {
	return copyFloats(m.coefficients)
}

func (m *LogisticRegression) Predict(features []float64) (int, error) {
	p, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return m.classes[1], nil
	}
	return m.classes[0], nil
}

func (m *LogisticRegression) PredictProba(features []float64) (float64, error) {
	if len(m.coefficients) == 0 {
		return 0, errors.New("model not loaded")
	}
	if len(features) != len(m.coefficients) {
		return 0, predictionErrorf("expected %d features, got %d", len(m.coefficients), len(features))
	}
	z := m.intercept
	for i, v := range features {
		if m.scaler != nil && m.scaler.Scale[i] != 0 {
			v = (v - m.scaler.Mean[i]) / m.scaler.Scale[i]
		}
		z += m.coefficients[i] * v
	}
	return sigmoid(z), nil
}

func (m *LogisticRegression) Save(path string) error {
	if len(m.coefficients) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.MarshalIndent(logisticArtifact{
		artifactHeader: artifactHeader{ModelType: TypeLogisticRegression, FeatureNames: m.featureNames, Classes: m.classes},
		Coefficients:   m.coefficients,
		Intercept:      m.intercept,
		Scaler:         m.scaler,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *LogisticRegression) decode(payload []byte) error {
	var art logisticArtifact
	if err := json.Unmarshal(payload, &art); err != nil {
		return err
	}
	return m.apply(art)
}

func (m *LogisticRegression) apply(art logisticArtifact) error {
	if err := art.validate(len(art.Coefficients)); err != nil {
		return err
	}
	if art.Scaler != nil && (len(art.Scaler.Mean) != len(art.Coefficients) || len(art.Scaler.Scale) != len(art.Coefficients)) {
		return errors.New("scaler does not match coefficients")
	}
	m.featureNames = append([]string(nil), art.FeatureNames...)
	m.classes = append([]int(nil), art.Classes...)
	m.coefficients = copyFloats(art.Coefficients)
	m.intercept = art.Intercept
	m.scaler = art.Scaler
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
