package features

import (
	"net/url"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// FromForm collects the submitted fields of a form. Empty fields count as
// absent; names outside the schema are rejected.
func FromForm(form url.Values) (Values, error) {
	raw := make(map[string]string, len(form))
	for name, list := range form {
		if len(list) == 0 {
			continue
		}
		raw[name] = list[0]
	}
	return FromSettings(raw)
}

// FromSettings collects name=value pairs such as the CLI's --set flags.
func FromSettings(settings map[string]string) (Values, error) {
	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(Values, len(settings))
	for _, name := range names {
		field, ok := Lookup(name)
		if !ok {
			return nil, &UnknownFieldError{Field: name}
		}
		text := strings.TrimSpace(settings[name])
		if text == "" {
			continue
		}
		v, err := field.Parse(text)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return values, nil
}

// Build assembles a row in model column order. Each column takes the
// collected value, then the default; a column with neither fails with a
// MissingFieldError naming the first such column. Pass nil defaults to
// require every column.
func Build(values, defaults Values) (Row, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := schemaIndex[name]; !ok {
			return Row{}, &UnknownFieldError{Field: name}
		}
	}

	var (
		row  Row
		errs error
	)
	for i, f := range schema {
		v, ok := values[f.Name]
		if !ok {
			v, ok = defaults[f.Name]
		}
		if !ok {
			return Row{}, &MissingFieldError{Field: f.Name}
		}
		if err := f.Check(v); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		accessors[i].set(&row, v)
	}
	if errs != nil {
		return Row{}, errs
	}
	return row, nil
}

// DefaultRow is the row built from the default value table.
func DefaultRow() Row {
	row, err := Build(nil, Defaults())
	if err != nil {
		panic("features: default table violates schema: " + err.Error())
	}
	return row
}
