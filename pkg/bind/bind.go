// Package bind decodes and validates request input.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/mo"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// JSON decodes r.Body into dest and runs validate.Struct. A malformed or
// oversized body returns err; failed rules return errs.
func JSON(w http.ResponseWriter, r *http.Request, dest any) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// QueryInt reads a positive integer query parameter, or def.
func QueryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// QueryDate parses a YYYY-MM-DD (or RFC 3339) query parameter as UTC. Absent
// or unparseable values are None; the caller decides whether that is an
// error.
func QueryDate(r *http.Request, key string) (mo.Option[time.Time], error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return mo.None[time.Time](), nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return mo.Some(t.UTC()), nil
		}
	}
	return mo.None[time.Time](), fmt.Errorf("%s: expected YYYY-MM-DD, got %q", key, raw)
}
