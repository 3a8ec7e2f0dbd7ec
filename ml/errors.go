package ml

import "fmt"

// ModelLoadError is returned when the artifact is missing, unreadable or malformed.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// PredictionError is returned when a row does not fit the model's expected input.
type PredictionError struct {
	Reason string
}

func (e *PredictionError) Error() string {
	return "prediction failed: " + e.Reason
}

func predictionErrorf(format string, args ...interface{}) *PredictionError {
	return &PredictionError{Reason: fmt.Sprintf(format, args...)}
}
