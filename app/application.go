// Package app holds the dependencies shared by the entry points.
package app

import (
	"context"

	"go.uber.org/zap"

	"couponcast/config"
	"couponcast/db"
	"couponcast/features"
	"couponcast/ml"
)

// Prediction sources recorded in the prediction log.
const (
	SourceWeb       = "web"
	SourceLive      = "live"
	SourceDashboard = "dashboard"
	SourceCLI       = "cli"
)

// Application owns the loaded model for the lifetime of the process and is
// passed by reference to every handler. Store is nil when prediction
// logging is disabled.
type Application struct {
	Config  *config.Config
	Logger  *zap.Logger
	Invoker *ml.Invoker
	Store   *db.Store
}

// Predict scores row and, when a store is configured, records the result.
// A failed write is logged and does not fail the prediction.
func (a *Application) Predict(ctx context.Context, source string, row features.Row) (ml.Inference, error) {
	inf, err := a.Invoker.Infer(row)
	if err != nil {
		return ml.Inference{}, err
	}
	if a.Store == nil {
		return inf, nil
	}
	rec, err := a.Store.Record(ctx, db.Record{
		Source:      source,
		ModelType:   a.Invoker.Info().Type,
		Class:       inf.Class,
		Probability: inf.Probability,
		Row:         row,
	})
	if err != nil {
		a.logger().Warn("failed to record prediction", zap.String("source", source), zap.Error(err))
		return inf, nil
	}
	a.logger().Debug("prediction recorded", zap.String("id", rec.ID), zap.String("source", source), zap.Int("class", inf.Class))
	return inf, nil
}

// Close releases the prediction log.
func (a *Application) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

func (a *Application) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
