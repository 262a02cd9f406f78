package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/controllers"
	appgraphql "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auditlog"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type harness struct {
	t        *testing.T
	handler  http.Handler
	keys     *auth.Keys
	products *repositories.ProductRepository
	orders   *repositories.OrderRepository
	queue    *queue.Queue
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := record.NewMemory()
	products := repositories.NewProductRepository(store)
	orders := repositories.NewOrderRepository(store)
	customers := repositories.NewCustomerRepository(store)
	q := queue.New(queue.NewMemoryDriver())
	audit := auditlog.New(storage.NewMemory(), "logs")
	policy := services.WritePolicy{}

	ledger := services.NewLedger(orders, products, q, audit, policy)
	catalog := services.NewCatalog(products, q, audit, policy)
	custs := services.NewCustomers(customers, audit, policy, services.AdminCredentials{Email: "admin@shop.test", Password: "letmein"})
	dash := services.NewDashboards(orders, products, customers, q, cache.NewMemory(), 0)
	rec := services.NewReconciler(orders, products, audit, policy)

	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)
	schema, err := appgraphql.NewSchema(appgraphql.Deps{Ledger: ledger, Catalog: catalog, Dashboards: dash})
	require.NoError(t, err)

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Keys:     keys,
		Account:  controllers.NewAccountController(custs),
		Customer: controllers.NewCustomerController(ledger, catalog, custs, dash),
		Admin:    controllers.NewAdminController(ledger, catalog, custs, dash, rec),
		Stats:    controllers.NewStatsController(dash),
		Health:   controllers.NewHealthController(store),
		GraphQL:  graphql.Handler(schema),
	})
	return &harness{t: t, handler: r.Handler(), keys: keys, products: products, orders: orders, queue: q}
}

func (h *harness) token(role, customerID string) string {
	h.t.Helper()
	tok, err := h.keys.Issue(role, customerID, time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, body, token string) (int, string) {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w.Code, w.Body.String()
}

func (h *harness) seedProduct(id, price string, stock int) {
	h.t.Helper()
	_, err := h.products.Create(context.Background(), models.Product{
		ID: id, Name: "Lamp " + id, Price: decimal.RequireFromString(price),
		StockQuantity: stock, Category: "Home", IsActive: true,
	})
	require.NoError(h.t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(http.MethodPost, "/api/account/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"engine42"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	assert.NotEmpty(t, gjson.Get(body, "data.id").String())
	assert.Equal(t, models.DefaultCountry, gjson.Get(body, "data.country").String())
	assert.False(t, gjson.Get(body, "data.passwordHash").Exists())

	code, _ = h.do(http.MethodPost, "/api/account/register",
		`{"firstName":"Ada","lastName":"L","email":"ada@example.com","password":"engine42"}`, "")
	assert.Equal(t, http.StatusConflict, code)

	code, body = h.do(http.MethodPost, "/api/account/login", `{"email":"ada@example.com","password":"engine42"}`, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, auth.RoleCustomer, gjson.Get(body, "data.role").String())
	assert.Equal(t, "ada@example.com", gjson.Get(body, "data.customer.email").String())

	code, _ = h.do(http.MethodPost, "/api/account/login", `{"email":"ada@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = h.do(http.MethodPost, "/api/account/login", `{"email":"admin@shop.test","password":"letmein"}`, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, auth.RoleAdmin, gjson.Get(body, "data.role").String())
}

func TestRegisterRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"firstName":`, http.StatusBadRequest},
		{"unknown field", `{"firstName":"A","lastName":"B","email":"a@b.co","password":"secret1","admin":true}`, http.StatusBadRequest},
		{"bad email", `{"firstName":"A","lastName":"B","email":"nope","password":"secret1"}`, http.StatusUnprocessableEntity},
		{"short password", `{"firstName":"A","lastName":"B","email":"a@b.co","password":"abc"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := h.do(http.MethodPost, "/api/account/register", tt.body, "")
			assert.Equal(t, tt.want, code, body)
		})
	}
}

func TestRolesGuardRouteGroups(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(http.MethodGet, "/api/customer/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = h.do(http.MethodGet, "/api/customer/orders", "", h.token(auth.RoleAdmin, ""))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(http.MethodGet, "/api/admin/orders", "", h.token(auth.RoleCustomer, "c1"))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(http.MethodGet, "/api/stats/products", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestPlaceOrderThroughAPI(t *testing.T) {
	h := newHarness(t)
	h.seedProduct("p1", "2.50", 5)
	c1 := h.token(auth.RoleCustomer, "c1")

	code, body := h.do(http.MethodPost, "/api/customer/orders", `{"productId":"p1","quantity":2}`, c1)
	require.Equal(t, http.StatusCreated, code, body)
	orderID := gjson.Get(body, "data.id").String()
	assert.Equal(t, models.StatusPending, gjson.Get(body, "data.status").String())
	assert.Equal(t, "c1", gjson.Get(body, "data.customerId").String())
	assert.InDelta(t, 5.0, gjson.Get(body, "data.totalAmount").Float(), 0.001)

	p, err := h.products.Find(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity)

	pending, err := h.queue.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	code, _ = h.do(http.MethodPost, "/api/customer/orders", `{"productId":"p1","quantity":10}`, c1)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = h.do(http.MethodPost, "/api/customer/orders", `{"productId":"ghost","quantity":1}`, c1)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(http.MethodPost, "/api/customer/orders", `{"productId":"p1","quantity":0}`, c1)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = h.do(http.MethodGet, "/api/customer/orders", "", c1)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, int64(1), gjson.Get(body, "data.pagination.total").Int())
	assert.Equal(t, orderID, gjson.Get(body, "data.items.0.id").String())

	code, _ = h.do(http.MethodGet, "/api/customer/orders/"+orderID, "", c1)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(http.MethodGet, "/api/customer/orders/"+orderID, "", h.token(auth.RoleCustomer, "c2"))
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.do(http.MethodGet, "/api/customer/orders?fromDate=yesterday", "", c1)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.True(t, gjson.Get(body, "errors.fromDate").Exists())
}

func TestAdminRepairAndStatus(t *testing.T) {
	h := newHarness(t)
	h.seedProduct("p1", "4.00", 10)
	_, err := h.orders.Create(context.Background(), models.Order{
		ID: "o1", CustomerID: "c1", Status: models.StatusPending, OrderedAt: time.Now(),
		Items: []models.OrderItem{{ProductID: "p1", ProductName: "Lamp", Quantity: 3}},
	})
	require.NoError(t, err)
	admin := h.token(auth.RoleAdmin, "")

	code, body := h.do(http.MethodGet, "/api/admin/orders", "", admin)
	require.Equal(t, http.StatusOK, code, body)
	assert.InDelta(t, 0.0, gjson.Get(body, "data.items.0.totalAmount").Float(), 0.001)
	assert.InDelta(t, 12.0, gjson.Get(body, "data.items.0.displayTotal").Float(), 0.001)

	code, body = h.do(http.MethodPost, "/api/admin/orders/repair", "", admin)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, int64(1), gjson.Get(body, "data.repaired").Int())

	o, err := h.orders.Find(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(12)), o.Total.String())

	code, body = h.do(http.MethodPost, "/api/admin/orders/o1/status", `{"status":"Completed"}`, admin)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, models.StatusCompleted, gjson.Get(body, "data.status").String())

	code, _ = h.do(http.MethodPost, "/api/admin/orders/ghost/status", `{"status":"Completed"}`, admin)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.do(http.MethodGet, "/api/admin/dashboard", "", admin)
	require.Equal(t, http.StatusOK, code, body)
	assert.InDelta(t, 12.0, gjson.Get(body, "data.totalRevenue").Float(), 0.001)
}

func TestAdminProductLifecycle(t *testing.T) {
	h := newHarness(t)
	admin := h.token(auth.RoleAdmin, "")

	code, body := h.do(http.MethodPost, "/api/admin/products",
		`{"name":"Desk Lamp","price":"12.50","stockQuantity":3,"category":"Home"}`, admin)
	require.Equal(t, http.StatusCreated, code, body)
	id := gjson.Get(body, "data.id").String()
	require.NotEmpty(t, id)
	assert.True(t, gjson.Get(body, "data.isActive").Bool())

	code, _ = h.do(http.MethodPost, "/api/admin/products",
		`{"name":"Free Lamp","price":"0","stockQuantity":3,"category":"Home"}`, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = h.do(http.MethodPost, "/api/admin/products/"+id+"/toggle", "", admin)
	require.Equal(t, http.StatusOK, code, body)
	assert.False(t, gjson.Get(body, "data.isActive").Bool())

	code, body = h.do(http.MethodPost, "/api/admin/products/"+id,
		`{"name":"Desk Lamp XL","price":"15","stockQuantity":9,"category":"Home","isActive":true}`, admin)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Desk Lamp XL", gjson.Get(body, "data.name").String())
	assert.True(t, gjson.Get(body, "data.lastUpdated").Exists())

	code, body = h.do(http.MethodGet, "/api/stats/products", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), gjson.Get(body, "data.count").Int())

	code, _ = h.do(http.MethodPost, "/api/admin/products/"+id+"/delete", "", admin)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(http.MethodGet, "/api/admin/products/"+id, "", admin)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminGraphQLAndHealth(t *testing.T) {
	h := newHarness(t)
	h.seedProduct("p1", "1.00", 0)

	code, body := h.do(http.MethodPost, "/api/admin/graphql",
		`{"query":"{ dashboard { totalProducts outOfStockProducts } }"}`, h.token(auth.RoleAdmin, ""))
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, int64(1), gjson.Get(body, "data.dashboard.totalProducts").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "data.dashboard.outOfStockProducts").Int())

	code, body = h.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", gjson.Get(body, "data.status").String())
}
