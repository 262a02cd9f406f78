// Package graphql defines the read-only admin query schema: orders with
// display totals, the dashboard and the catalogue.
package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shopspring/decimal"
)

// Deps are the services the resolvers read from.
type Deps struct {
	Ledger     *services.Ledger
	Catalog    *services.Catalog
	Dashboards *services.Dashboards
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"productId":   &graphql.Field{Type: graphql.String},
		"productName": &graphql.Field{Type: graphql.String},
		"quantity":    &graphql.Field{Type: graphql.Int},
		"unitPrice": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return money(p.Source.(models.OrderItem).UnitPrice), nil
			},
		},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.String, Resolve: orderField(func(v services.OrderView) any { return v.ID })},
		"customerId": &graphql.Field{Type: graphql.String, Resolve: orderField(func(v services.OrderView) any { return v.CustomerID })},
		"status":     &graphql.Field{Type: graphql.String, Resolve: orderField(func(v services.OrderView) any { return v.Status })},
		"orderDate": &graphql.Field{Type: graphql.String, Resolve: orderField(func(v services.OrderView) any {
			return v.OrderedAt.UTC().Format(time.RFC3339)
		})},
		"storedTotal":  &graphql.Field{Type: graphql.String, Resolve: orderField(func(v services.OrderView) any { return money(v.Total) })},
		"displayTotal": &graphql.Field{Type: graphql.String, Resolve: orderField(func(v services.OrderView) any { return money(v.DisplayTotal) })},
		"items":        &graphql.Field{Type: graphql.NewList(itemType), Resolve: orderField(func(v services.OrderView) any { return v.Items })},
	},
})

func orderField(get func(services.OrderView) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		return get(p.Source.(services.OrderView)), nil
	}
}

var orderPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderPage",
	Fields: graphql.Fields{
		"items":      &graphql.Field{Type: graphql.NewList(orderType)},
		"page":       &graphql.Field{Type: graphql.Int},
		"pageSize":   &graphql.Field{Type: graphql.Int},
		"total":      &graphql.Field{Type: graphql.Int},
		"totalPages": &graphql.Field{Type: graphql.Int},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.String},
		"name":          &graphql.Field{Type: graphql.String},
		"category":      &graphql.Field{Type: graphql.String},
		"price":         &graphql.Field{Type: graphql.String},
		"stockQuantity": &graphql.Field{Type: graphql.Int},
		"isActive":      &graphql.Field{Type: graphql.Boolean},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"totalCustomers":     &graphql.Field{Type: graphql.Int},
		"totalProducts":      &graphql.Field{Type: graphql.Int},
		"totalOrders":        &graphql.Field{Type: graphql.Int},
		"pendingOrders":      &graphql.Field{Type: graphql.Int},
		"lowStockProducts":   &graphql.Field{Type: graphql.Int},
		"outOfStockProducts": &graphql.Field{Type: graphql.Int},
		"totalRevenue":       &graphql.Field{Type: graphql.String},
	},
})

// NewSchema builds the admin schema over deps.
func NewSchema(deps Deps) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"orders": &graphql.Field{
				Type: orderPageType,
				Args: graphql.FieldConfigArgument{
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"pageSize": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.DefaultPageSize},
					"status":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"search":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := deps.Ledger.List(p.Context, services.OrderFilter{
						Search:   p.Args["search"].(string),
						Status:   p.Args["status"].(string),
						Page:     p.Args["page"].(int),
						PageSize: p.Args["pageSize"].(int),
					})
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"items":      page.Items,
						"page":       page.Pagination.Page,
						"pageSize":   page.Pagination.PerPage,
						"total":      page.Pagination.Total,
						"totalPages": page.Pagination.TotalPages,
					}, nil
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					o, err := deps.Ledger.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					products, err := deps.Catalog.All(p.Context)
					if err != nil {
						return nil, err
					}
					return services.Views([]models.Order{o}, services.IndexCatalog(products))[0], nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"pageSize": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: services.MaxPageSize},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := deps.Catalog.List(p.Context, services.ProductFilter{
						Category: p.Args["category"].(string),
						Page:     p.Args["page"].(int),
						PageSize: p.Args["pageSize"].(int),
					})
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(page.Items))
					for i, pr := range page.Items {
						out[i] = map[string]any{
							"id":            pr.ID,
							"name":          pr.Name,
							"category":      pr.Category,
							"price":         money(pr.Price),
							"stockQuantity": pr.StockQuantity,
							"isActive":      pr.IsActive,
						}
					}
					return out, nil
				},
			},
			"dashboard": &graphql.Field{
				Type: dashboardType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					d, err := deps.Dashboards.Admin(p.Context)
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"totalCustomers":     d.TotalCustomers,
						"totalProducts":      d.TotalProducts,
						"totalOrders":        d.TotalOrders,
						"pendingOrders":      d.PendingOrders,
						"lowStockProducts":   d.LowStockProducts,
						"outOfStockProducts": d.OutOfStockProducts,
						"totalRevenue":       money(d.TotalRevenue),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}
