package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"couponcast/features"
)

func schemaLogistic(t *testing.T) *LogisticRegression {
	t.Helper()
	coef := make([]float64, features.Len())
	coef[7] = 0.8     // family_size
	coef[12] = -0.002 // total_coupon_discount
	m, err := NewLogisticRegression(features.Names(), []int{0, 1}, coef, -4, nil)
	require.NoError(t, err)
	return m
}

func TestOpenMissingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	for i := 0; i < 3; i++ {
		inv, err := Open("", path, zap.NewNop())
		assert.Nil(t, inv)
		var loadErr *ModelLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, path, loadErr.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestOpenCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	inv, err := Open("", path, zap.NewNop())
	assert.Nil(t, inv)
	var loadErr *ModelLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestOpenTypeMismatchAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, schemaLogistic(t).Save(path))

	_, err := Open(TypeDecisionTree, path, nil)
	var loadErr *ModelLoadError
	require.ErrorAs(t, err, &loadErr)

	other := filepath.Join(dir, "svm.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"model_type":"svm","feature_names":["a"],"classes":[0,1]}`), 0o600))
	_, err = Open("", other, nil)
	require.ErrorAs(t, err, &loadErr)
}

func TestInferReturnsKnownClassAndProbability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, schemaLogistic(t).Save(path))

	inv, err := Open(TypeLogisticRegression, path, zap.NewNop())
	require.NoError(t, err)

	rows := []features.Row{features.DefaultRow()}
	big := features.DefaultRow()
	big.FamilySize = 10
	big.TotalCouponDiscount = -5000
	rows = append(rows, big)

	for _, row := range rows {
		out, err := inv.Infer(row)
		require.NoError(t, err)
		assert.Contains(t, []int{0, 1}, out.Class)
		require.NotNil(t, out.Probability)
		assert.GreaterOrEqual(t, *out.Probability, 0.0)
		assert.LessOrEqual(t, *out.Probability, 1.0)
		assert.Len(t, out.Importances, features.Len())
	}

	out, err := inv.Infer(big)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Class)

	info := inv.Info()
	assert.Equal(t, TypeLogisticRegression, info.Type)
	assert.Equal(t, path, info.Path)
	assert.True(t, info.HasProbability)
	assert.True(t, info.HasImportances)
}

func TestInferRejectsMismatchedColumns(t *testing.T) {
	names := features.Names()
	names[0], names[1] = names[1], names[0]
	m, err := NewLogisticRegression(names, []int{0, 1}, make([]float64, len(names)), 0, nil)
	require.NoError(t, err)

	_, err = NewInvoker(m).Infer(features.DefaultRow())
	var pe *PredictionError
	require.ErrorAs(t, err, &pe)

	short, err := NewLogisticRegression(features.Names()[:5], []int{0, 1}, make([]float64, 5), 0, nil)
	require.NoError(t, err)
	_, err = NewInvoker(short).Infer(features.DefaultRow())
	require.ErrorAs(t, err, &pe)
}

func TestInferTreeWithoutProbability(t *testing.T) {
	nodes := []TreeNode{{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true}}
	dt, err := NewDecisionTree(features.Names(), []int{0, 1}, nodes, nil)
	require.NoError(t, err)

	inv := NewInvoker(dt)
	out, err := inv.Infer(features.DefaultRow())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Class)
	assert.Nil(t, out.Probability)
	assert.Nil(t, out.Importances)
	assert.False(t, inv.Info().HasImportances)
}

func TestShippedArtifactsLoad(t *testing.T) {
	for _, name := range []string{"logistic_model.json", "best_dt_model.json"} {
		inv, err := Open("", filepath.Join("..", "model", name), nil)
		require.NoError(t, err, name)
		out, err := inv.Infer(features.DefaultRow())
		require.NoError(t, err, name)
		require.NotNil(t, out.Probability, name)
	}
}
