package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadModel reads the artifact at path. An empty modelType accepts whatever
// type the artifact declares.
func LoadModel(modelType, path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	var header artifactHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	if modelType == "" {
		modelType = header.ModelType
	}
	if header.ModelType != "" && header.ModelType != modelType {
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("artifact is %q, configured as %q", header.ModelType, modelType)}
	}

	var model interface {
		Classifier
		decode(payload []byte) error
	}
	switch modelType {
	case TypeLogisticRegression:
		model = &LogisticRegression{}
	case TypeDecisionTree:
		model = &DecisionTree{}
	default:
		return nil, &ModelLoadError{Path: path, Err: fmt.Errorf("unsupported model type %q", modelType)}
	}
	if err := model.decode(payload); err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	return model, nil
}
