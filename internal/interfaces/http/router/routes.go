package router

import (
	"github.com/cshub/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoints mounted under the API prefix. Health is
// mounted at the engine root.
type Handlers struct {
	Customers     *handler.CustomerHandler
	Imports       *handler.CustomerImportHandler
	Invoices      *handler.InvoiceHandler
	Risks         *handler.RiskHandler
	Opportunities *handler.OpportunityHandler
	Dashboard     *handler.DashboardHandler
	Users         *handler.UserHandler
	Health        *handler.HealthHandler
}

// DomainGroups builds one route group per bounded context
func DomainGroups(h Handlers) []RouteRegistrar {
	customers := NewDomainGroup("account", "/customers")
	customers.
		POST("", h.Customers.Create).
		GET("", h.Customers.List).
		POST("/bulk-upload", h.Imports.BulkUpload).
		GET("/:id", h.Customers.Get).
		PUT("/:id", h.Customers.Update).
		PUT("/:id/status", h.Customers.ChangeStatus).
		PUT("/:id/churn", h.Customers.Churn).
		GET("/:id/churn", h.Customers.GetChurn).
		PUT("/:id/health", h.Customers.ChangeHealth)

	customers.Group("ledger", "/:id/invoices").
		GET("", h.Invoices.List).
		POST("", h.Invoices.Create).
		GET("/summary", h.Invoices.Summary).
		GET("/:invoiceId", h.Invoices.Get).
		PUT("/:invoiceId", h.Invoices.Update).
		DELETE("/:invoiceId", h.Invoices.Delete)

	risks := NewDomainGroup("risk", "/risks").
		POST("", h.Risks.Create).
		GET("", h.Risks.List).
		GET("/:id", h.Risks.Get).
		PUT("/:id", h.Risks.Update)

	opportunities := NewDomainGroup("pipeline", "/opportunities").
		POST("", h.Opportunities.Create).
		GET("", h.Opportunities.List).
		GET("/:id", h.Opportunities.Get).
		PUT("/:id", h.Opportunities.Update).
		PUT("/:id/stage", h.Opportunities.MoveStage).
		GET("/:id/history", h.Opportunities.History)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("/stats", h.Dashboard.Stats)

	users := NewDomainGroup("directory", "/users").
		GET("", h.Users.List)

	return []RouteRegistrar{customers, risks, opportunities, dashboard, users}
}

// Mount registers the API groups and the root health route on r
func Mount(r *Router, h Handlers) {
	r.engine.GET("/health", h.Health.Health)
	r.Register(DomainGroups(h)...)
	r.Setup()
}
