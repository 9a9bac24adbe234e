// Package httpapi serves the admin HTTP surface: a liveness probe and
// the Prometheus scrape endpoint, using gin the way the teacher's own
// HTTP-facing code would (see the vault façade client's request
// conventions in internal/vaultclient).
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAdminRouter wires /healthz and /metrics onto a fresh gin engine in
// release mode (the admin surface carries no request-path logging of
// its own; that belongs to the ingestion/pipeline loggers).
func NewAdminRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
