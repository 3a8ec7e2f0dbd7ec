// Package features declares the seventeen-column input schema of the coupon
// redemption model and turns user input into rows the model can score.
package features

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the scalar type of a schema field.
type Kind int

const (
	Int Kind = iota
	Float
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Option is one selectable value of a discrete field.
type Option struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Field describes one model input column.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Step     float64  `json:"step"`
	Default  float64  `json:"default"`
	Options  []Option `json:"options,omitempty"`
	Rank     int      `json:"rank"`
	Advanced bool     `json:"advanced"`
}

// Discrete reports whether the field only takes one of its options.
func (f Field) Discrete() bool {
	return len(f.Options) > 0
}

// Parse converts raw user text into the field's numeric value. Option labels
// are matched case-insensitively before numeric parsing.
func (f Field) Parse(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	for _, opt := range f.Options {
		if strings.EqualFold(opt.Label, text) {
			return opt.Value, nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ParseError{Field: f.Name, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Field: f.Name, Value: raw, Err: errNotFinite}
	}
	if f.Kind != Float && v != math.Trunc(v) {
		return 0, &ParseError{Field: f.Name, Value: raw, Err: errNotInteger}
	}
	return v, nil
}

// Check reports whether v is an acceptable value for the field.
func (f Field) Check(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &RangeError{Field: f.Name, Value: v, Min: f.Min, Max: f.Max, Reason: "is not a finite number"}
	case f.Kind != Float && v != math.Trunc(v):
		return &RangeError{Field: f.Name, Value: v, Min: f.Min, Max: f.Max, Reason: "is not an integer"}
	case v < f.Min || v > f.Max:
		return &RangeError{Field: f.Name, Value: v, Min: f.Min, Max: f.Max}
	}
	if f.Discrete() {
		if _, ok := f.option(v); !ok {
			return &RangeError{Field: f.Name, Value: v, Min: f.Min, Max: f.Max, Reason: "is not one of " + f.optionList()}
		}
	}
	return nil
}

// Clamp bounds v to the field's range and snaps it to the nearest option.
func (f Field) Clamp(v float64) float64 {
	v = math.Max(f.Min, math.Min(f.Max, v))
	if f.Kind != Float {
		v = math.Round(v)
	}
	if !f.Discrete() {
		return v
	}
	best := f.Options[0].Value
	for _, opt := range f.Options[1:] {
		if math.Abs(opt.Value-v) < math.Abs(best-v) {
			best = opt.Value
		}
	}
	return best
}

// Format renders v the way the input surfaces display it.
func (f Field) Format(v float64) string {
	if f.Kind == Categorical {
		if opt, ok := f.option(v); ok {
			return opt.Label
		}
	}
	if f.Kind == Int {
		return strconv.FormatInt(int64(v), 10)
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f Field) option(v float64) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Value == v {
			return opt, true
		}
	}
	return Option{}, false
}

func (f Field) optionList() string {
	labels := make([]string, len(f.Options))
	for i, opt := range f.Options {
		labels[i] = strconv.FormatFloat(opt.Value, 'f', -1, 64)
	}
	return strings.Join(labels, ", ")
}

// schema lists the columns in the order the model was trained on.
var schema = []Field{
	{Name: "campaign_type", Label: "Campaign Type", Kind: Categorical, Min: 0, Max: 1, Step: 1, Default: 0,
		Options: []Option{{Label: "X", Value: 0}, {Label: "Y", Value: 1}}, Rank: 4},
	{Name: "num_items", Label: "Num Items", Kind: Int, Min: 1, Max: 1000, Step: 1, Default: 6, Rank: 3},
	{Name: "mode_brand", Label: "Mode Brand", Kind: Int, Min: 0, Max: 2000, Step: 1, Default: 782, Rank: 7},
	{Name: "mode_brand_type", Label: "Mode Brand Type", Kind: Int, Min: 0, Max: 5, Step: 1, Default: 0, Rank: 9, Advanced: true},
	{Name: "mode_category", Label: "Mode Category", Kind: Int, Min: 0, Max: 10, Step: 1, Default: 3, Rank: 10, Advanced: true},
	{Name: "age_range", Label: "Age Range", Kind: Int, Min: 1, Max: 5, Step: 1, Default: 1, Rank: 11, Advanced: true},
	{Name: "rented", Label: "Rented (0=No, 1=Yes)", Kind: Float, Min: 0, Max: 1, Step: 1, Default: 0.0,
		Options: []Option{{Label: "0.0", Value: 0}, {Label: "1.0", Value: 1}}, Rank: 5},
	{Name: "family_size", Label: "Family Size", Kind: Int, Min: 1, Max: 10, Step: 1, Default: 3, Rank: 1},
	{Name: "income_bracket", Label: "Income Bracket", Kind: Int, Min: 1, Max: 5, Step: 1, Default: 4, Rank: 12, Advanced: true},
	{Name: "no_bought_items", Label: "No Bought Items", Kind: Float, Min: 0, Max: 50000, Step: 10, Default: 15973.0, Rank: 13, Advanced: true},
	{Name: "total_cost", Label: "Total Cost", Kind: Float, Min: 0, Max: 500000, Step: 100, Default: 119287.65, Rank: 14, Advanced: true},
	{Name: "total_discount", Label: "Total Discount", Kind: Float, Min: -100000, Max: 0, Step: 100, Default: -32217.11, Rank: 6},
	{Name: "total_coupon_discount", Label: "Total Coupon Discount", Kind: Float, Min: -5000, Max: 0, Step: 10, Default: -1321.50, Rank: 2},
	{Name: "campaign_duration", Label: "Campaign Duration", Kind: Int, Min: 1, Max: 365, Step: 1, Default: 47, Rank: 15, Advanced: true},
	{Name: "day_of_year", Label: "Day of Year", Kind: Int, Min: 1, Max: 366, Step: 1, Default: 139, Rank: 16, Advanced: true},
	{Name: "week_of_year", Label: "Week of Year", Kind: Int, Min: 1, Max: 53, Step: 1, Default: 20, Rank: 17, Advanced: true},
	{Name: "month_of_year", Label: "Month of Year", Kind: Int, Min: 1, Max: 12, Step: 1, Default: 5, Rank: 8},
}

var schemaIndex = func() map[string]int {
	index := make(map[string]int, len(schema))
	for i, f := range schema {
		index[f.Name] = i
	}
	return index
}()

// Fields returns the schema in model column order.
func Fields() []Field {
	out := make([]Field, len(schema))
	copy(out, schema)
	return out
}

// ByImpact returns the schema ordered from most to least influential.
func ByImpact() []Field {
	out := Fields()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// Names returns the column names in model order.
func Names() []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by column name.
func Lookup(name string) (Field, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return Field{}, false
	}
	return schema[i], true
}

// Len is the number of model columns.
func Len() int {
	return len(schema)
}
