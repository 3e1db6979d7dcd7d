// Package validate provides struct-tag validation with French messages.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	numeric             any decimal number
//	integer             whole number
//	month               calendar month written YYYY-MM
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	maxbytes=N          string: max length in bytes
//	gte=N               number >= N (strings are parsed first)
//	in=a,b,c            value must be one of the listed items (case-insensitive)
//
// Fields are named by their `form` tag, then their `json` tag, and are
// checked in declaration order so callers can report the first failure.
//
// Example:
//
//	type Input struct {
//	    Nom   string `form:"nom"   validate:"required,max=255"`
//	    Total string `form:"total" validate:"required,numeric,gte=0"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Check validates every exported field of v that carries a `validate` tag
// and returns the failures in field declaration order, at most one per field.
func Check(v interface{}) []FieldError {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()

	var out []FieldError
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := fieldName(field)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				out = append(out, FieldError{Field: name, Message: msg})
				break
			}
		}
	}
	return out
}

// First returns the first failure of Check, or nil when v is valid.
func First(v interface{}) *FieldError {
	errs := Check(v)
	if len(errs) == 0 {
		return nil
	}
	return &errs[0]
}

// Struct returns the failures of Check keyed by field name.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	for _, fe := range Check(v) {
		errs[fe.Field] = fe.Message
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// Month parses a YYYY-MM value in loc, returning the first instant of it.
func Month(s string, loc *time.Location) (time.Time, error) {
	if !monthRE.MatchString(s) {
		return time.Time{}, fmt.Errorf("validate: %q is not a YYYY-MM month", s)
	}
	return time.ParseInLocation("2006-01", s, loc)
}

func applyRule(rule, field string, v reflect.Value) string {
	raw := strings.TrimSpace(fmt.Sprintf("%v", v.Interface()))
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("Le champ %s est requis", field)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("Le champ %s doit être un nombre", field)
		}
	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("Le champ %s doit être un entier", field)
		}
	case "month":
		if _, err := Month(raw, time.UTC); err != nil {
			return fmt.Sprintf("Le champ %s doit être au format AAAA-MM", field)
		}
	case "min":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("Le champ %s doit être au moins %s", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("Le champ %s doit contenir au moins %s caractères", field, param)
		}
	case "max":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("Le champ %s ne doit pas dépasser %s", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("Le champ %s ne doit pas dépasser %s caractères", field, param)
		}
	case "maxbytes":
		if float64(len(fmt.Sprintf("%v", v.Interface()))) > mustParseFloat(param) {
			return fmt.Sprintf("Le champ %s ne doit pas dépasser %s octets", field, param)
		}
	case "gte":
		if toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("Le champ %s doit être supérieur ou égal à %s", field, param)
		}
	case "in":
		for _, a := range strings.Split(param, ",") {
			if strings.EqualFold(raw, strings.TrimSpace(a)) {
				return ""
			}
		}
		return fmt.Sprintf("La valeur du champ %s est invalide", field)
	}

	return ""
}

var monthRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(strings.TrimSpace(fmt.Sprintf("%v", v.Interface())), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := f.Tag.Get(key)
		if idx := strings.Index(name, ","); idx != -1 {
			name = name[:idx]
		}
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

// splitRules splits the validate tag by comma while keeping the in= list
// intact: "required,in=a,b,c,max=10" → ["required","in=a,b,c","max=10"].
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam && current.String() == "in=" {
				inParam = true
			}
			continue
		}
		if inParam && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

func looksLikeNewRule(s string) bool {
	for _, k := range []string{"required", "nullable", "numeric", "integer", "month", "min=", "max=", "gte=", "in="} {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
