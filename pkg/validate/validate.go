// Package validate checks request structs against `validate` struct tags.
//
// Rules (comma-separated; the first failing rule per field is reported):
//
//	required     not the zero value / not blank
//	nullable     skip the remaining rules when empty
//	email        plausible email address
//	uuid         canonical UUID
//	min=N, max=N string: rune length; number: value
//	gte=N, lte=N number bounds
//	in=a|b|c     one of the listed values
//
// Example:
//
//	type PlaceOrder struct {
//	    ProductID string `json:"productId" validate:"required"`
//	    Quantity  int    `json:"quantity"  validate:"required,gte=1"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Struct validates the exported fields of v that carry a `validate` tag and
// returns json field name → message. An empty map means valid.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || !f.IsExported() {
			continue
		}
		name := fieldName(f)
		value := reflect.Indirect(rv.Field(i))

		rules := strings.Split(tag, ",")
		if slicesContains(rules, "nullable") && isEmpty(value) {
			continue
		}
		for _, rule := range rules {
			if msg := check(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func check(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	if key != "required" && key != "nullable" && !v.IsValid() {
		return ""
	}

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "email":
		if !emailRE.MatchString(text(v)) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "uuid":
		if !uuidRE.MatchString(text(v)) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "min":
		n, _ := strconv.ParseFloat(param, 64)
		if isNumber(v) && number(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		if !isNumber(v) && float64(len([]rune(text(v)))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n, _ := strconv.ParseFloat(param, 64)
		if isNumber(v) && number(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		if !isNumber(v) && float64(len([]rune(text(v)))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "gte":
		n, _ := strconv.ParseFloat(param, 64)
		if number(v) < n {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lte":
		n, _ := strconv.ParseFloat(param, 64)
		if number(v) > n {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "in":
		if !slicesContains(strings.Split(param, "|"), text(v)) {
			return fmt.Sprintf("The selected %s is invalid.", field)
		}
	}
	return ""
}

func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return f.Name
}

func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	if v.Kind() == reflect.String {
		return strings.TrimSpace(v.String()) == ""
	}
	return v.IsZero()
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func number(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	f, _ := strconv.ParseFloat(text(v), 64)
	return f
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func slicesContains(list []string, s string) bool {
	for _, item := range list {
		if strings.TrimSpace(item) == s {
			return true
		}
	}
	return false
}
