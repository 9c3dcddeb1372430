// Package validation checks decoded JSON bodies against ordered field schemas.
package validation

import (
	"fmt"
	"strconv"
)

type Field struct {
	Name  string
	Rules []Rule
	// SkipAbsent ignores the field entirely when the key is not in the body.
	SkipAbsent bool
}

type Schema []Field

// Validate runs each field's rules in order and stops at the first failure
// for that field. Coerced values are written back into data. It returns one
// message per failing field, or an empty slice.
func Validate(data map[string]interface{}, schema Schema) []string {
	errs := []string{}
	for _, f := range schema {
		value, present := data[f.Name]
		if !present && f.SkipAbsent {
			continue
		}

		failed := false
		for _, rule := range f.Rules {
			var msg string
			value, msg = rule(value, f.Name)
			if msg != "" {
				errs = append(errs, msg)
				failed = true
				break
			}
		}

		if !failed && present && value != nil {
			data[f.Name] = value
		}
	}
	return errs
}

// Partial relaxes a schema for updates: only fields present in the body are checked.
func Partial(schema Schema) Schema {
	out := make(Schema, len(schema))
	for i, f := range schema {
		f.SkipAbsent = true
		out[i] = f
	}
	return out
}

// ValidateParams checks that every named path parameter is a positive integer.
func ValidateParams(params map[string]string, names ...string) []string {
	errs := []string{}
	for _, name := range names {
		n, err := strconv.ParseUint(params[name], 10, 64)
		if err != nil || n == 0 {
			errs = append(errs, fmt.Sprintf("Parâmetro '%s' deve ser um ID válido", name))
		}
	}
	return errs
}
