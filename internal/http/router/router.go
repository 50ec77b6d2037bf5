// Package router builds the gin engine: shared middleware, the health
// endpoint and the route groups handed to each module.
package router

import (
	"net/http"
	"slices"
	"time"

	apphttp "workmarket_sdr/internal/http"
	"workmarket_sdr/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const roleAdmin = "admin"

// New creates the engine and registers every module.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	api := engine.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		sessions := 0
		if app.Sessions != nil {
			sessions = app.Sessions.SessionCount()
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions})
	})

	v1 := api.Group("/v1")
	auth := httpkit.AuthRequired(app.Config)
	admin := v1.Group("/admin", auth, httpkit.RequireRole(roleAdmin))

	chatLimiter := httpkit.NewPerMinuteRateLimiter(app.Config.GetChatRateLimitPerMinute(), app.Logger)

	rc := &apphttp.RouterContext{
		Engine:         engine,
		API:            api,
		V1:             v1,
		Admin:          admin,
		Config:         app.Config,
		AuthMiddleware: auth,
		ChatRateLimit:  chatLimiter.RateLimit(),
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() || slices.Contains(cfg.GetCORSOrigins(), "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = cfg.GetCORSOrigins()
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"http://localhost:4200"}
	}
	return c
}
