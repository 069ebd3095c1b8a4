// Package router assembles the thin admin HTTP surface: otelgin tracing,
// access logging/panic recovery, security headers, IP rate limiting, and
// CORS, wrapping the adminapi handlers.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/reasv/board-archiver/internal/adminapi"
	"github.com/reasv/board-archiver/internal/middleware"
)

// New builds the gin engine serving the admin API under /api.
func New(handler *adminapi.Handler, allowedOrigins []string, serviceName string) *gin.Engine {
	r := gin.New()

	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.Observability())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimit())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	handler.Register(api)

	return r
}
