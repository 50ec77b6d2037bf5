// Package conversation provides the chat bounded context: session memory,
// lead extraction, stage-driven prompting and the chat HTTP surface.
package conversation

import (
	"workmarket_sdr/internal/conversation/handler"
	"workmarket_sdr/internal/conversation/memory"
	"workmarket_sdr/internal/conversation/ports"
	"workmarket_sdr/internal/conversation/service"
	"workmarket_sdr/internal/events"
	apphttp "workmarket_sdr/internal/http"
	"workmarket_sdr/platform/logger"
	"workmarket_sdr/platform/validator"
)

// Module is the conversation bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	store   *memory.Store
}

// NewModule wires the session store, orchestrator and handler.
func NewModule(completion ports.CompletionClient, eventBus events.Bus, val *validator.Validator, cfg service.Config, log *logger.Logger) *Module {
	store := memory.New()
	svc := service.New(store, completion, eventBus, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		store:   store,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Service returns the orchestrator.
func (m *Module) Service() *service.Service {
	return m.service
}

// Store returns the session store, used by the idle-session sweeper.
func (m *Module) Store() *memory.Store {
	return m.store
}

// SessionCount reports live sessions for the health endpoint.
func (m *Module) SessionCount() int {
	return m.store.Len()
}

// RegisterRoutes mounts the chat routes and the admin session routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/chat", ctx.ChatRateLimit, m.handler.Chat)
	// Path used by the first web widget release.
	ctx.API.POST("/chat", ctx.ChatRateLimit, m.handler.Chat)

	ctx.Admin.GET("/sessions/:id", m.handler.GetSession)
	ctx.Admin.DELETE("/sessions/:id", m.handler.ClearSession)
}

var _ apphttp.Module = (*Module)(nil)
