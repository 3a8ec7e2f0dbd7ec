package features

import (
	"go.uber.org/multierr"
)

// Values maps column names to numeric values.
type Values map[string]float64

// Defaults returns a fresh copy of the default value table.
func Defaults() Values {
	values := make(Values, len(schema))
	for _, f := range schema {
		values[f.Name] = f.Default
	}
	return values
}

// Row is one record passed to the model.
type Row struct {
	CampaignType        int     `json:"campaign_type"`
	NumItems            int     `json:"num_items"`
	ModeBrand           int     `json:"mode_brand"`
	ModeBrandType       int     `json:"mode_brand_type"`
	ModeCategory        int     `json:"mode_category"`
	AgeRange            int     `json:"age_range"`
	Rented              float64 `json:"rented"`
	FamilySize          int     `json:"family_size"`
	IncomeBracket       int     `json:"income_bracket"`
	NoBoughtItems       float64 `json:"no_bought_items"`
	TotalCost           float64 `json:"total_cost"`
	TotalDiscount       float64 `json:"total_discount"`
	TotalCouponDiscount float64 `json:"total_coupon_discount"`
	CampaignDuration    int     `json:"campaign_duration"`
	DayOfYear           int     `json:"day_of_year"`
	WeekOfYear          int     `json:"week_of_year"`
	MonthOfYear         int     `json:"month_of_year"`
}

type accessor struct {
	get func(*Row) float64
	set func(*Row, float64)
}

func intField(p func(*Row) *int) accessor {
	return accessor{
		get: func(r *Row) float64 { return float64(*p(r)) },
		set: func(r *Row, v float64) { *p(r) = int(v) },
	}
}

func floatField(p func(*Row) *float64) accessor {
	return accessor{
		get: func(r *Row) float64 { return *p(r) },
		set: func(r *Row, v float64) { *p(r) = v },
	}
}

// accessors is parallel to schema.
var accessors = []accessor{
	intField(func(r *Row) *int { return &r.CampaignType }),
	intField(func(r *Row) *int { return &r.NumItems }),
	intField(func(r *Row) *int { return &r.ModeBrand }),
	intField(func(r *Row) *int { return &r.ModeBrandType }),
	intField(func(r *Row) *int { return &r.ModeCategory }),
	intField(func(r *Row) *int { return &r.AgeRange }),
	floatField(func(r *Row) *float64 { return &r.Rented }),
	intField(func(r *Row) *int { return &r.FamilySize }),
	intField(func(r *Row) *int { return &r.IncomeBracket }),
	floatField(func(r *Row) *float64 { return &r.NoBoughtItems }),
	floatField(func(r *Row) *float64 { return &r.TotalCost }),
	floatField(func(r *Row) *float64 { return &r.TotalDiscount }),
	floatField(func(r *Row) *float64 { return &r.TotalCouponDiscount }),
	intField(func(r *Row) *int { return &r.CampaignDuration }),
	intField(func(r *Row) *int { return &r.DayOfYear }),
	intField(func(r *Row) *int { return &r.WeekOfYear }),
	intField(func(r *Row) *int { return &r.MonthOfYear }),
}

// Value is one column of a row prepared for display.
type Value struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Number float64 `json:"value"`
	Text   string  `json:"text"`
}

// Names returns the row's column names in model order.
func (r Row) Names() []string {
	return Names()
}

// Vector returns the row's values in model column order.
func (r Row) Vector() []float64 {
	vec := make([]float64, len(accessors))
	for i, a := range accessors {
		vec[i] = a.get(&r)
	}
	return vec
}

// Get returns the value of a column.
func (r Row) Get(name string) (float64, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return 0, false
	}
	return accessors[i].get(&r), true
}

// Set assigns a column after checking it against the schema.
func (r *Row) Set(name string, v float64) error {
	i, ok := schemaIndex[name]
	if !ok {
		return &UnknownFieldError{Field: name}
	}
	if err := schema[i].Check(v); err != nil {
		return err
	}
	accessors[i].set(r, v)
	return nil
}

// Values returns the row as a map keyed by column name.
func (r Row) Values() Values {
	values := make(Values, len(accessors))
	for i, a := range accessors {
		values[schema[i].Name] = a.get(&r)
	}
	return values
}

// Display returns every column with its label and display text.
func (r Row) Display() []Value {
	out := make([]Value, len(schema))
	for i, f := range schema {
		v := accessors[i].get(&r)
		out[i] = Value{Name: f.Name, Label: f.Label, Number: v, Text: f.Format(v)}
	}
	return out
}

// Validate checks every column against its declared domain.
func (r Row) Validate() error {
	var errs error
	for i, f := range schema {
		errs = multierr.Append(errs, f.Check(accessors[i].get(&r)))
	}
	return errs
}
