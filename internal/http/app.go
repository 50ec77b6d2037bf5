// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"workmarket_sdr/internal/events"
	"workmarket_sdr/platform/config"
	"workmarket_sdr/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// SessionCounter exposes the number of live chat sessions for health checks.
type SessionCounter interface {
	SessionCount() int
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Sessions reports live sessions on /api/health.
	Sessions SessionCounter
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
