package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// AdminController serves the administrator surface.
type AdminController struct {
	ledger     *services.Ledger
	catalog    *services.Catalog
	customers  *services.Customers
	dashboards *services.Dashboards
	reconciler *services.Reconciler
}

func NewAdminController(ledger *services.Ledger, catalog *services.Catalog, customers *services.Customers, dashboards *services.Dashboards, reconciler *services.Reconciler) *AdminController {
	return &AdminController{
		ledger:     ledger,
		catalog:    catalog,
		customers:  customers,
		dashboards: dashboards,
		reconciler: reconciler,
	}
}

func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := c.dashboards.Admin(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, d)
}

// ── Orders ──────────────────────────────────────────────────────────────────

func (c *AdminController) Orders(w http.ResponseWriter, r *http.Request) {
	f, errs := orderFilter(r)
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}
	page, err := c.ledger.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, page.Items, page.Pagination)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

func (c *AdminController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if !decode(w, r, &in) {
		return
	}
	o, err := c.ledger.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, o)
}

// RepairOrders runs one reconciliation pass and returns its report.
func (c *AdminController) RepairOrders(w http.ResponseWriter, r *http.Request) {
	report, err := c.reconciler.Run(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, report)
}

// ── Products ────────────────────────────────────────────────────────────────

func (c *AdminController) Products(w http.ResponseWriter, r *http.Request) {
	page, err := c.catalog.List(r.Context(), services.ProductFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Page:       bind.QueryInt(r, "page", 1),
		PageSize:   bind.QueryInt(r, "pageSize", services.DefaultPageSize),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, models.ProductResponses(page.Items), page.Pagination)
}

func (c *AdminController) Product(w http.ResponseWriter, r *http.Request) {
	p, err := c.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p.Response())
}

func (c *AdminController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := c.catalog.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, p.Response())
}

func (c *AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !decode(w, r, &in) {
		return
	}
	p, err := c.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p.Response())
}

func (c *AdminController) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := c.catalog.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p.Response())
}

func (c *AdminController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := c.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "Product deleted"})
}

// ── Customers ───────────────────────────────────────────────────────────────

func (c *AdminController) Customers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := c.customers.List(r.Context(), services.CustomerFilter{
		Search:   q.Get("search"),
		Country:  q.Get("country"),
		City:     q.Get("city"),
		Page:     bind.QueryInt(r, "page", 1),
		PageSize: bind.QueryInt(r, "pageSize", services.DefaultPageSize),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, page.Items, page.Pagination)
}

func (c *AdminController) Customer(w http.ResponseWriter, r *http.Request) {
	customer, err := c.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, customer.Profile())
}

func (c *AdminController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	customer, err := c.customers.UpdateProfile(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, customer.Profile())
}

func (c *AdminController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := c.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "Customer deleted"})
}
