package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTree(t *testing.T, withDistribution bool) *DecisionTree {
	t.Helper()
	nodes := []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true},
	}
	if withDistribution {
		nodes[1].Distribution = []float64{30, 10}
		nodes[2].Distribution = []float64{5, 15}
	}
	dt, err := NewDecisionTree([]string{"a", "b"}, []int{0, 1}, nodes, []float64{0.9, 0.1})
	require.NoError(t, err)
	return dt
}

func TestDecisionTreePredict(t *testing.T) {
	dt := smallTree(t, true)

	label, err := dt.Predict([]float64{0.1, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	p, err := dt.PredictProba([]float64{0.1, 0.2})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p, 1e-9)

	label, err = dt.Predict([]float64{0.9, 0.8})
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	p, err = dt.PredictProba([]float64{0.9, 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-9)
}

func TestDecisionTreeWithoutDistribution(t *testing.T) {
	dt := smallTree(t, false)
	_, err := dt.PredictProba([]float64{0.1, 0.2})
	assert.ErrorIs(t, err, ErrNoProbability)
}

func TestDecisionTreeRejectsWrongWidth(t *testing.T) {
	dt := smallTree(t, true)
	_, err := dt.Predict([]float64{0.1})
	var pe *PredictionError
	require.ErrorAs(t, err, &pe)
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, smallTree(t, true).Save(path))

	model, err := LoadModel(TypeDecisionTree, path)
	require.NoError(t, err)
	loaded, ok := model.(*DecisionTree)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, loaded.FeatureNames())
	assert.Equal(t, []float64{0.9, 0.1}, loaded.Importances())
}

func TestDecisionTreeRejectsBrokenNodes(t *testing.T) {
	_, err := NewDecisionTree([]string{"a"}, []int{0, 1}, []TreeNode{
		{FeatureIdx: 0, Threshold: 1, LeftChild: 0, RightChild: 7},
	}, nil)
	require.Error(t, err)

	_, err = NewDecisionTree([]string{"a"}, []int{0, 1}, nil, nil)
	require.Error(t, err)
}

func leafTree(t *testing.T, label int, distribution []float64) error {
	t.Helper()
	_, err := NewDecisionTree([]string{"a"}, []int{0, 1}, []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true, Distribution: []float64{4, 1}},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: label, IsLeaf: true, Distribution: distribution},
	}, nil)
	return err
}

func TestDecisionTreeRejectsUnknownLeafClass(t *testing.T) {
	err := leafTree(t, 7, []float64{1, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaf class 7")

	require.NoError(t, leafTree(t, 1, []float64{1, 3}))
}

func TestDecisionTreeRejectsBadDistribution(t *testing.T) {
	tests := []struct {
		name         string
		distribution []float64
	}{
		{"negative", []float64{3, -1}},
		{"short", []float64{3}},
		{"long", []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, leafTree(t, 1, tt.distribution))
		})
	}

	// all-zero counts load; PredictProba reports no probability instead
	require.NoError(t, leafTree(t, 1, []float64{0, 0}))
}

func TestLoadModelRejectsInvalidLeaves(t *testing.T) {
	tests := []struct {
		name string
		leaf string
	}{
		{"unknown class", `{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":7,"is_leaf":true}`},
		{"negative count", `{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":1,"is_leaf":true,"distribution":[3,-1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := `{"model_type":"decision_tree","feature_names":["a"],"classes":[0,1],"nodes":[` +
				`{"feature_idx":0,"threshold":0.5,"left_child":1,"right_child":2,"class_label":0,"is_leaf":false},` +
				`{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":0,"is_leaf":true},` +
				tt.leaf + `]}`
			path := filepath.Join(t.TempDir(), "tree.json")
			require.NoError(t, os.WriteFile(path, []byte(artifact), 0o600))

			_, err := LoadModel(TypeDecisionTree, path)
			var le *ModelLoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, path, le.Path)
		})
	}
}
