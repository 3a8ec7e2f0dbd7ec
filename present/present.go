// Package present turns model output into the JSON response of the web
// endpoint and the human-readable message of the dashboards.
package present

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"couponcast/features"
	"couponcast/ml"
)

const (
	HeadlineRedeem   = "Customer WILL redeem the coupon!"
	HeadlineNoRedeem = "Customer will NOT redeem the coupon."
	Tip              = "Try increasing the above values and watch the probability update!"
)

// advisories are shown in this order.
var advisories = []struct {
	feature string
	text    string
}{
	{"family_size", "Increasing family size increases the chance."},
	{"total_coupon_discount", "Higher coupon discount makes redemption more likely."},
	{"num_items", "Adding more items to the cart increases likelihood."},
	{"campaign_type", "Switching campaign type may help if possible."},
	{"rented", "Rented customers tend to redeem more."},
}

// Response is the JSON body of a successful web prediction.
type Response struct {
	Prediction        int       `json:"prediction"`
	Probability       *float64  `json:"probability,omitempty"`
	FeatureImportance []float64 `json:"feature_importance"`
}

// NewResponse builds the web response. FeatureImportance is never null.
func NewResponse(inf ml.Inference) Response {
	importance := inf.Importances
	if importance == nil {
		importance = []float64{}
	}
	return Response{
		Prediction:        inf.Class,
		Probability:       inf.Probability,
		FeatureImportance: importance,
	}
}

// Advice is one fixed hint about an influential feature.
type Advice struct {
	Feature string `json:"feature"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Text    string `json:"text"`
}

func (a Advice) String() string {
	return fmt.Sprintf("%s: %s — %s", a.Label, a.Value, a.Text)
}

// Message is the rendered result shown to a person.
type Message struct {
	Redeem          bool     `json:"redeem"`
	Headline        string   `json:"headline"`
	Probability     *float64 `json:"probability,omitempty"`
	ProbabilityText string   `json:"probability_text,omitempty"`
	Advice          []Advice `json:"advice"`
	Tip             string   `json:"tip"`
}

// Render builds the message for one inference on row.
func Render(inf ml.Inference, row features.Row) Message {
	msg := Message{
		Redeem:   inf.Class == 1,
		Headline: HeadlineNoRedeem,
		Advice:   Advisories(row),
		Tip:      Tip,
	}
	if msg.Redeem {
		msg.Headline = HeadlineRedeem
	}
	if inf.Probability != nil {
		p := *inf.Probability
		msg.Probability = &p
		msg.ProbabilityText = FormatProbability(p)
	}
	return msg
}

// Advisories returns the fixed hints with the row's current values.
// Categorical columns show the code the model receives, not its label.
func Advisories(row features.Row) []Advice {
	caser := cases.Title(language.English)
	out := make([]Advice, 0, len(advisories))
	for _, a := range advisories {
		field, _ := features.Lookup(a.feature)
		v, _ := row.Get(a.feature)
		out = append(out, Advice{
			Feature: a.feature,
			Label:   caser.String(strings.ReplaceAll(a.feature, "_", " ")),
			Value:   adviceValue(field, v),
			Text:    a.text,
		})
	}
	return out
}

func adviceValue(field features.Field, v float64) string {
	if field.Kind == features.Categorical {
		return strconv.FormatInt(int64(v), 10)
	}
	return field.Format(v)
}

// FormatProbability renders p as a percentage with two decimals.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// ModelMissing is the blocking message shown when the artifact does not exist.
func ModelMissing(path string) string {
	return fmt.Sprintf("Model file not found. Please check '%s'.", path)
}

// ModelUnavailable is the blocking message for a failed model load. Only a
// missing file is reported as not found.
func ModelUnavailable(path string, err error) string {
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return ModelMissing(path)
	}
	cause := err
	var le *ml.ModelLoadError
	if errors.As(err, &le) && le.Err != nil {
		cause = le.Err
	}
	return fmt.Sprintf("Model file could not be loaded. Please check '%s': %v", path, cause)
}

// Text renders the message as plain text.
func (m Message) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prediction Result: %s\n", m.Headline)
	if m.ProbabilityText != "" {
		fmt.Fprintf(&b, "Probability of Redemption: %s\n", m.ProbabilityText)
	}
	b.WriteString("\nFeatures that most influence redemption:\n")
	for _, a := range m.Advice {
		fmt.Fprintf(&b, "  %s\n", a)
	}
	fmt.Fprintf(&b, "\n%s\n", m.Tip)
	return b.String()
}
