package http

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"couponcast/app"
	"couponcast/features"
	"couponcast/ml"
	"couponcast/present"
)

//go:embed assets
var assets embed.FS

var indexTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

type handlers struct {
	app      *app.Application
	logger   *zap.Logger
	upgrader websocket.Upgrader
	maxBytes int64
}

// RegisterHandlers routes the prediction endpoints on mux.
func RegisterHandlers(mux *http.ServeMux, application *app.Application, logger *zap.Logger, maxBytes int64) {
	h := &handlers{
		app:      application,
		logger:   logger,
		maxBytes: maxBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	static, _ := fs.Sub(assets, "assets")

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /ws/predict", h.handleLive)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type fieldView struct {
	features.Field
	Value     float64
	Display   string
	InputStep string
}

// inputStep is the slider's step attribute. Browsers snap a value that is
// off the min+k*step grid, so such defaults get step="any".
func inputStep(field features.Field, v float64) string {
	if field.Step <= 0 {
		return "any"
	}
	k := (v - field.Min) / field.Step
	if math.Abs(k-math.Round(k)) > 1e-9 {
		return "any"
	}
	return strconv.FormatFloat(field.Step, 'f', -1, 64)
}

type indexView struct {
	Primary  []fieldView
	Advanced []fieldView
}

func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	defaults := features.DefaultRow()
	var view indexView
	for _, field := range features.ByImpact() {
		v, _ := defaults.Get(field.Name)
		fv := fieldView{Field: field, Value: v, Display: field.Format(v), InputStep: inputStep(field, v)}
		if field.Advanced {
			view.Advanced = append(view.Advanced, fv)
		} else {
			view.Primary = append(view.Primary, fv)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, view); err != nil {
		h.logger.Error("render index", zap.Error(err))
	}
}

// handlePredict builds a row strictly from the posted form. Every field is
// required.
func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	values, err := features.FromForm(r.PostForm)
	if err != nil {
		h.writePredictError(w, r, err)
		return
	}
	row, err := features.Build(values, nil)
	if err != nil {
		h.writePredictError(w, r, err)
		return
	}
	inf, err := h.app.Predict(r.Context(), app.SourceWeb, row)
	if err != nil {
		h.writePredictError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present.NewResponse(inf))
}

// writePredictError maps the error taxonomy onto status codes.
func (h *handlers) writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	if clientError(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Error("prediction failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func clientError(err error) bool {
	var pe *ml.PredictionError
	return features.IsInputError(err) || errors.As(err, &pe)
}

func (h *handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Invoker.Info())
}

func (h *handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.app.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "prediction log disabled"})
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(l, 500)
	}

	records, err := h.app.Store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("query predictions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
