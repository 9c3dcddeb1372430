package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rule checks one value. It returns the (possibly coerced) value and an
// empty message on success. A nil value means the field was absent or null;
// every rule except Required lets it through untouched.
type Rule func(value interface{}, field string) (interface{}, string)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+55\s?)?(\(?\d{2}\)?\s?)?\d{4,5}-?\d{4}$`)
)

func Required() Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if isEmpty(value) {
			return value, fmt.Sprintf("Campo '%s' é obrigatório", field)
		}
		return value, ""
	}
}

// String checks type and rune length. max <= 0 means unbounded.
func String(min, max int) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		s, ok := value.(string)
		if !ok {
			return value, fmt.Sprintf("Campo '%s' deve ser um texto", field)
		}
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		if n < min {
			return value, fmt.Sprintf("Campo '%s' deve ter pelo menos %d caracteres", field, min)
		}
		if max > 0 && n > max {
			return value, fmt.Sprintf("Campo '%s' deve ter no máximo %d caracteres", field, max)
		}
		return s, ""
	}
}

func Pattern(re *regexp.Regexp, message string) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return value, fmt.Sprintf("Campo '%s' %s", field, message)
		}
		return s, ""
	}
}

// Number accepts JSON numbers and numeric strings, coercing both to float64.
func Number() Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		f, ok := toFloat(value)
		if !ok {
			return value, fmt.Sprintf("Campo '%s' deve ser um número", field)
		}
		return f, ""
	}
}

func Integer() Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return value, fmt.Sprintf("Campo '%s' deve ser um número inteiro", field)
		}
		return int(f), ""
	}
}

// Min and Max expect a value already coerced by Number or Integer.
func Min(limit float64) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if f, ok := toFloat(value); ok && f < limit {
			return value, fmt.Sprintf("Campo '%s' deve ser maior ou igual a %s", field, formatLimit(limit))
		}
		return value, ""
	}
}

func Max(limit float64) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if f, ok := toFloat(value); ok && f > limit {
			return value, fmt.Sprintf("Campo '%s' deve ser menor ou igual a %s", field, formatLimit(limit))
		}
		return value, ""
	}
}

// Boolean is strict: "true" and 1 are rejected.
func Boolean() Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		if _, ok := value.(bool); !ok {
			return value, fmt.Sprintf("Campo '%s' deve ser verdadeiro ou falso", field)
		}
		return value, ""
	}
}

func Email() Rule {
	return Pattern(emailPattern, "deve ser um email válido")
}

// Phone accepts Brazilian numbers with optional +55 and area code.
func Phone() Rule {
	return Pattern(phonePattern, "deve ser um telefone válido")
}

func Enum(values ...string) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		if s, ok := value.(string); ok {
			for _, v := range values {
				if s == v {
					return s, ""
				}
			}
		}
		return value, fmt.Sprintf("Campo '%s' deve ser um dos valores: %s", field, strings.Join(values, ", "))
	}
}

// Array checks the element count. max <= 0 means unbounded.
func Array(min, max int) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if value == nil {
			return nil, ""
		}
		items, ok := value.([]interface{})
		if !ok {
			return value, fmt.Sprintf("Campo '%s' deve ser uma lista", field)
		}
		if len(items) < min {
			return value, fmt.Sprintf("Campo '%s' deve ter pelo menos %d itens", field, min)
		}
		if max > 0 && len(items) > max {
			return value, fmt.Sprintf("Campo '%s' deve ter no máximo %d itens", field, max)
		}
		return items, ""
	}
}

// Optional runs rules only when the value is present and not an empty string.
func Optional(rules ...Rule) Rule {
	return func(value interface{}, field string) (interface{}, string) {
		if isEmpty(value) {
			return value, ""
		}
		for _, rule := range rules {
			var msg string
			value, msg = rule(value, field)
			if msg != "" {
				return value, msg
			}
		}
		return value, ""
	}
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func formatLimit(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
