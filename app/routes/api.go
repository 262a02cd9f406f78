// Package routes declares the HTTP surface.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Deps carries what the route table mounts.
type Deps struct {
	Keys *auth.Keys
	// AccountLimiter throttles register and login per client IP. Nil
	// disables throttling.
	AccountLimiter *middleware.RateLimiter

	Account  *controllers.AccountController
	Customer *controllers.CustomerController
	Admin    *controllers.AdminController
	Stats    *controllers.StatsController
	Health   *controllers.HealthController
	GraphQL  http.HandlerFunc
}

func RegisterAPI(r *router.Router, d Deps) {
	r.Get("/health", "health", d.Health.Show)
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	var throttle []router.Middleware
	if d.AccountLimiter != nil {
		throttle = append(throttle, d.AccountLimiter.Middleware)
	}
	account := api.Group("/account", throttle...)
	account.Post("/register", "account.register", d.Account.Register)
	account.Post("/login", "account.login", d.Account.Login)

	customer := api.Group("/customer", middleware.RequireRole(d.Keys, auth.RoleCustomer))
	customer.Get("/dashboard", "customer.dashboard", d.Customer.Dashboard)
	customer.Get("/products", "customer.products.index", d.Customer.Products)
	customer.Get("/products/{id}", "customer.products.show", d.Customer.Product)
	customer.Post("/orders", "customer.orders.store", d.Customer.PlaceOrder)
	customer.Get("/orders", "customer.orders.index", d.Customer.Orders)
	customer.Get("/orders/{id}", "customer.orders.show", d.Customer.Order)
	customer.Get("/profile", "customer.profile.show", d.Customer.Profile)
	customer.Post("/profile", "customer.profile.update", d.Customer.UpdateProfile)
	customer.Post("/password", "customer.password.update", d.Customer.ChangePassword)

	admin := api.Group("/admin", middleware.RequireRole(d.Keys, auth.RoleAdmin))
	admin.Get("/dashboard", "admin.dashboard", d.Admin.Dashboard)
	admin.Get("/orders", "admin.orders.index", d.Admin.Orders)
	admin.Post("/orders/repair", "admin.orders.repair", d.Admin.RepairOrders)
	admin.Post("/orders/{id}/status", "admin.orders.status", d.Admin.UpdateOrderStatus)

	admin.Get("/products", "admin.products.index", d.Admin.Products)
	admin.Post("/products", "admin.products.store", d.Admin.CreateProduct)
	admin.Get("/products/{id}", "admin.products.show", d.Admin.Product)
	admin.Post("/products/{id}", "admin.products.update", d.Admin.UpdateProduct)
	admin.Post("/products/{id}/toggle", "admin.products.toggle", d.Admin.ToggleProduct)
	admin.Post("/products/{id}/delete", "admin.products.destroy", d.Admin.DeleteProduct)

	admin.Get("/customers", "admin.customers.index", d.Admin.Customers)
	admin.Get("/customers/{id}", "admin.customers.show", d.Admin.Customer)
	admin.Post("/customers/{id}", "admin.customers.update", d.Admin.UpdateCustomer)
	admin.Post("/customers/{id}/delete", "admin.customers.destroy", d.Admin.DeleteCustomer)

	admin.Post("/graphql", "admin.graphql", d.GraphQL)

	stats := api.Group("/stats")
	stats.Get("/customers", "stats.customers", d.Stats.Customers)
	stats.Get("/products", "stats.products", d.Stats.Products)
	stats.Get("/orders", "stats.orders", d.Stats.Orders)
}
