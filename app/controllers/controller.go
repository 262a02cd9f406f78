// Package controllers adapts HTTP requests to the application services.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// decode binds a JSON body into dest, answering 400 or 422 itself when the
// body is unusable.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	errs, err := bind.JSON(w, r, dest)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

// fail maps service errors to responses. Store-level kinds fall through to
// response.Err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationError(w, map[string]string{ve.Field: ve.Message})
	case errors.Is(err, services.ErrInsufficientStock):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, err.Error())
	default:
		response.Err(w, r, err)
	}
}

// customerID is the subject of the bearer token, or "" for admins.
func customerID(r *http.Request) string {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return ""
	}
	return strings.TrimSpace(claims.CustomerID)
}

// orderFilter reads the listing query: page, pageSize, search, status,
// fromDate and toDate.
func orderFilter(r *http.Request) (services.OrderFilter, map[string]string) {
	q := r.URL.Query()
	f := services.OrderFilter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Page:     bind.QueryInt(r, "page", 1),
		PageSize: bind.QueryInt(r, "pageSize", services.DefaultPageSize),
	}

	errs := map[string]string{}
	var err error
	if f.From, err = bind.QueryDate(r, "fromDate"); err != nil {
		errs["fromDate"] = err.Error()
	}
	if f.To, err = bind.QueryDate(r, "toDate"); err != nil {
		errs["toDate"] = err.Error()
	}
	if len(errs) > 0 {
		return f, errs
	}
	return f, nil
}
