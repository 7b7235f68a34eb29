// Package quotations provides the freight quotation domain module.
package quotations

import (
	"freightdesk_backend/internal/events"
	apphttp "freightdesk_backend/internal/http"
	"freightdesk_backend/internal/quotations/handler"
	"freightdesk_backend/internal/quotations/repository"
	"freightdesk_backend/internal/quotations/service"
	"freightdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotations domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotations module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, defaultCurrency string) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, defaultCurrency)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotations"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotations := ctx.Protected.Group("/quotations")
	m.handler.RegisterRoutes(quotations)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
