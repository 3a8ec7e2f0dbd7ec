package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
)

// DecisionTree is a binary decision tree stored as a flat node array with the
// root at index 0.
type DecisionTree struct {
	featureNames []string
	classes      []int
	nodes        []TreeNode
	importances  []float64
}

type TreeNode struct {
	FeatureIdx   int       `json:"feature_idx"`
	Threshold    float64   `json:"threshold"`
	LeftChild    int       `json:"left_child"`
	RightChild   int       `json:"right_child"`
	ClassLabel   int       `json:"class_label"`
	IsLeaf       bool      `json:"is_leaf"`
	Distribution []float64 `json:"distribution,omitempty"`
}

type treeArtifact struct {
	artifactHeader
	Nodes              []TreeNode `json:"nodes"`
	FeatureImportances []float64  `json:"feature_importances,omitempty"`
}

// NewDecisionTree builds a tree from already-trained nodes.
func NewDecisionTree(featureNames []string, classes []int, nodes []TreeNode, importances []float64) (*DecisionTree, error) {
	dt := &DecisionTree{}
	err := dt.apply(treeArtifact{
		artifactHeader:     artifactHeader{ModelType: TypeDecisionTree, FeatureNames: featureNames, Classes: classes},
		Nodes:              nodes,
		FeatureImportances: importances,
	})
	if err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Type() string { return TypeDecisionTree }

func (dt *DecisionTree) FeatureNames() []string {
	return append([]string(nil), dt.featureNames...)
}

func (dt *DecisionTree) Classes() []int {
	return append([]int(nil), dt.classes...)
}

func (dt *DecisionTree) Importances() []float64 {
	return copyFloats(dt.importances)
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	return leaf.ClassLabel, nil
}

// PredictProba returns the positive class's share of the leaf distribution.
func (dt *DecisionTree) PredictProba(features []float64) (float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	if len(leaf.Distribution) != len(dt.classes) {
		return 0, ErrNoProbability
	}
	total := 0.0
	for _, count := range leaf.Distribution {
		total += count
	}
	if total <= 0 {
		return 0, ErrNoProbability
	}
	return leaf.Distribution[1] / total, nil
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.nodes) == 0 {
		return TreeNode{}, errors.New("model not loaded")
	}
	if len(features) != len(dt.featureNames) {
		return TreeNode{}, predictionErrorf("expected %d features, got %d", len(dt.featureNames), len(features))
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return TreeNode{}, errors.New("invalid tree state")
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.MarshalIndent(treeArtifact{
		artifactHeader:     artifactHeader{ModelType: TypeDecisionTree, FeatureNames: dt.featureNames, Classes: dt.classes},
		Nodes:              dt.nodes,
		FeatureImportances: dt.importances,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) decode(payload []byte) error {
	var art treeArtifact
	if err := json.Unmarshal(payload, &art); err != nil {
		return err
	}
	return dt.apply(art)
}

func (dt *DecisionTree) apply(art treeArtifact) error {
	if err := art.validate(-1); err != nil {
		return err
	}
	if len(art.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if art.FeatureImportances != nil && len(art.FeatureImportances) != len(art.FeatureNames) {
		return errors.New("feature_importances do not match feature_names")
	}
	for i, node := range art.Nodes {
		if node.IsLeaf {
			if err := checkLeaf(node, art.Classes); err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(art.FeatureNames) {
			return errors.New("feature index out of range")
		}
		if node.LeftChild <= 0 || node.LeftChild >= len(art.Nodes) ||
			node.RightChild <= 0 || node.RightChild >= len(art.Nodes) {
			return errors.New("child index out of range")
		}
	}
	dt.featureNames = append([]string(nil), art.FeatureNames...)
	dt.classes = append([]int(nil), art.Classes...)
	dt.nodes = append([]TreeNode(nil), art.Nodes...)
	dt.importances = copyFloats(art.FeatureImportances)
	return nil
}

// checkLeaf rejects leaves that would predict outside the label set or carry
// an unusable class distribution.
func checkLeaf(node TreeNode, classes []int) error {
	if !slices.Contains(classes, node.ClassLabel) {
		return fmt.Errorf("leaf class %d not in classes %v", node.ClassLabel, classes)
	}
	if node.Distribution == nil {
		return nil
	}
	if len(node.Distribution) != len(classes) {
		return fmt.Errorf("leaf distribution has %d entries, want %d", len(node.Distribution), len(classes))
	}
	for _, count := range node.Distribution {
		if count < 0 || math.IsNaN(count) || math.IsInf(count, 0) {
			return fmt.Errorf("leaf distribution %v has a negative or non-finite entry", node.Distribution)
		}
	}
	return nil
}
