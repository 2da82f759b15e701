package host

import (
	"net/http"

	"github.com/danmuck/cmdfifo/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminHandler serves /healthz, /status and /metrics.
func (h *Host) AdminHandler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), observability.AdminMiddleware(h.cfg.Node, h.log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.Status())
	})
	observability.RegisterMetrics()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}
