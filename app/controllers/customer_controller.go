package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// CustomerController serves the signed-in customer. Every action is scoped
// to the customer id carried by the bearer token.
type CustomerController struct {
	ledger     *services.Ledger
	catalog    *services.Catalog
	customers  *services.Customers
	dashboards *services.Dashboards
}

func NewCustomerController(ledger *services.Ledger, catalog *services.Catalog, customers *services.Customers, dashboards *services.Dashboards) *CustomerController {
	return &CustomerController{ledger: ledger, catalog: catalog, customers: customers, dashboards: dashboards}
}

// self returns the token's customer id, answering 403 when there is none.
func self(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := customerID(r)
	if id == "" {
		response.Forbidden(w)
		return "", false
	}
	return id, true
}

func (c *CustomerController) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	d, err := c.dashboards.Customer(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, d)
}

func (c *CustomerController) Products(w http.ResponseWriter, r *http.Request) {
	page, err := c.catalog.List(r.Context(), services.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Page:     bind.QueryInt(r, "page", 1),
		PageSize: bind.QueryInt(r, "pageSize", services.DefaultPageSize),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, models.ProductResponses(page.Items), page.Pagination)
}

func (c *CustomerController) Product(w http.ResponseWriter, r *http.Request) {
	p, err := c.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p.Response())
}

type placeOrderRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// PlaceOrder answers 201 with the stored order. When the stock decrement
// failed after the order was written the 201 carries a warning message.
func (c *CustomerController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	var in placeOrderRequest
	if !decode(w, r, &in) {
		return
	}

	order, err := c.ledger.Place(r.Context(), id, in.ProductID, in.Quantity)
	var stockErr *services.StockAdjustmentError
	switch {
	case errors.As(err, &stockErr):
		response.CreatedWithWarning(w, stockErr.Order, "Order placed, but product stock could not be updated")
	case err != nil:
		fail(w, r, err)
	default:
		response.Created(w, order)
	}
}

func (c *CustomerController) Orders(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	f, errs := orderFilter(r)
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	page, err := c.ledger.ListForCustomer(r.Context(), id, f)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, page.Items, page.Pagination)
}

func (c *CustomerController) Order(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	o, err := c.ledger.GetForCustomer(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, o)
}

func (c *CustomerController) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	customer, err := c.customers.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, customer.Profile())
}

// UpdateProfile lets customers edit their own details. The active flag is
// admin-only and ignored here.
func (c *CustomerController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	var in services.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	in.IsActive = nil

	customer, err := c.customers.UpdateProfile(r.Context(), id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, customer.Profile())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (c *CustomerController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	var in changePasswordRequest
	if !decode(w, r, &in) {
		return
	}
	err := c.customers.ChangePassword(r.Context(), id, in.CurrentPassword, in.NewPassword)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		response.ValidationError(w, map[string]string{"currentPassword": "Current password is incorrect."})
		return
	case err != nil:
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "Password changed"})
}
