package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type AccountController struct {
	customers *services.Customers
}

func NewAccountController(customers *services.Customers) *AccountController {
	return &AccountController{customers: customers}
}

// Register creates a customer account and returns its profile.
func (c *AccountController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decode(w, r, &in) {
		return
	}

	customer, err := c.customers.Register(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, customer.Profile())
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and reports the role they grant. No session
// or token is created here.
func (c *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decode(w, r, &in) {
		return
	}

	principal, err := c.customers.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, principal)
}
