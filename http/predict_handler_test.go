package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponcast/features"
	"couponcast/ml"
)

type panicModel struct {
	ml.Classifier
}

func (panicModel) Predict([]float64) (int, error) {
	panic("corrupt weights")
}

type failingModel struct {
	ml.Classifier
}

func (failingModel) Predict([]float64) (int, error) {
	return 0, errors.New("matrix is singular")
}

func postPredict(t *testing.T, baseURL string, form url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(baseURL+"/predict", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHandlePredict(t *testing.T) {
	ts := newTestServer(t, newTestApp(t, familyModel(t), false))

	form := defaultForm()
	form.Set("family_size", "5")
	status, body := postPredict(t, ts.URL, form)
	require.Equal(t, http.StatusOK, status, body)

	var payload struct {
		Prediction        int       `json:"prediction"`
		Probability       *float64  `json:"probability"`
		FeatureImportance []float64 `json:"feature_importance"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, 1, payload.Prediction)
	require.NotNil(t, payload.Probability)
	assert.InDelta(t, 0.8176, *payload.Probability, 1e-3)
	require.Len(t, payload.FeatureImportance, features.Len())
	assert.Equal(t, 1.0, payload.FeatureImportance[7])

	status, body = postPredict(t, ts.URL, defaultForm())
	require.Equal(t, http.StatusOK, status, body)
	assert.Contains(t, body, `"prediction":0`)
}

func TestHandlePredictClientErrors(t *testing.T) {
	ts := newTestServer(t, newTestApp(t, familyModel(t), false))

	cases := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{
			name:   "missing field",
			mutate: func(f url.Values) { f.Del("family_size") },
			want:   `missing required field "family_size"`,
		},
		{
			name:   "empty field counts as missing",
			mutate: func(f url.Values) { f.Set("month_of_year", "") },
			want:   `missing required field "month_of_year"`,
		},
		{
			name:   "non-numeric",
			mutate: func(f url.Values) { f.Set("num_items", "lots") },
			want:   "num_items",
		},
		{
			name:   "fractional integer",
			mutate: func(f url.Values) { f.Set("family_size", "2.5") },
			want:   "family_size",
		},
		{
			name:   "unknown field",
			mutate: func(f url.Values) { f.Set("loyalty_tier", "3") },
			want:   "loyalty_tier",
		},
		{
			name:   "out of range",
			mutate: func(f url.Values) { f.Set("month_of_year", "13") },
			want:   "month_of_year",
		},
		{
			name:   "unknown option",
			mutate: func(f url.Values) { f.Set("campaign_type", "Z") },
			want:   "campaign_type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := defaultForm()
			tc.mutate(form)
			status, body := postPredict(t, ts.URL, form)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body, tc.want)
		})
	}
}

func TestHandlePredictShapeMismatch(t *testing.T) {
	names := features.Names()
	names[0], names[1] = names[1], names[0]
	model, err := ml.NewLogisticRegression(names, []int{0, 1}, make([]float64, len(names)), 0, nil)
	require.NoError(t, err)
	ts := newTestServer(t, newTestApp(t, model, false))

	status, body := postPredict(t, ts.URL, defaultForm())
	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, strings.HasPrefix(body, "prediction failed"), body)
}

func TestHandlePredictModelFailure(t *testing.T) {
	ts := newTestServer(t, newTestApp(t, failingModel{familyModel(t)}, false))

	status, body := postPredict(t, ts.URL, defaultForm())
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "matrix is singular")
}

func TestHandlePredictPanicIsServerError(t *testing.T) {
	ts := newTestServer(t, newTestApp(t, panicModel{familyModel(t)}, false))

	status, body := postPredict(t, ts.URL, defaultForm())
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error\n", body)
}

func TestHandlePredictTreeWithoutImportances(t *testing.T) {
	nodes := []ml.TreeNode{
		{FeatureIdx: 7, Threshold: 3.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, ClassLabel: 0},
		{IsLeaf: true, ClassLabel: 1},
	}
	tree, err := ml.NewDecisionTree(features.Names(), []int{0, 1}, nodes, nil)
	require.NoError(t, err)
	ts := newTestServer(t, newTestApp(t, tree, false))

	status, body := postPredict(t, ts.URL, defaultForm())
	require.Equal(t, http.StatusOK, status, body)
	assert.JSONEq(t, `{"prediction":0,"feature_importance":[]}`, body)
}

func TestHandlePredictBodyTooLarge(t *testing.T) {
	application := newTestApp(t, familyModel(t), false)
	cfg := DefaultServerConfig()
	cfg.MaxFormBytes = 64
	srv := NewServer(application, cfg)

	form := defaultForm()
	rr := newRecorderRequest(srv, form)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func newRecorderRequest(srv *Server, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}
