package app

import (
	"net/http"
	"time"

	"github.com/docsum/transcript-summary/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api"

var appInfo = gin.H{
	"name":    "transcript-summary",
	"version": "1.0.0",
}

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	root := r.Group("")
	a.pageHandler().RegisterRoutes(root)
	a.relayHandler().RegisterRoutes(root, a.rateLimiter())

	api := r.Group(apiPrefix)
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"backend_configured": a.cfg.BackendConfigured(),
			"rate_limit":         a.counter != nil,
		})
	})
	api.GET("/uptime", func(c *gin.Context) {
		uptime := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptime.Milliseconds(),
			"humanize":  humanizeDuration(uptime),
		})
	})
}
