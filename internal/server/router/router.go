package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
func New(units *handlers.UnitHandler, inventory *handlers.InventoryHandler, cablestock *handlers.CableStockHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	// Snapshot month keys carry an escaped slash (MM%2FYYYY).
	r.UseRawPath = true
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	api.GET("/units", units.List)
	api.POST("/units", units.Create)
	api.POST("/units/check-ip", units.CheckIP)
	api.GET("/units/available-ips", units.AvailableIPs)
	api.GET("/units/:name", units.Get)
	api.PUT("/units/:name", units.Update)
	api.DELETE("/units/:name", units.Delete)

	api.GET("/inventory", inventory.List)
	api.POST("/inventory", inventory.Create)
	api.GET("/inventory/:item", inventory.Get)
	api.PUT("/inventory/:item", inventory.Update)
	api.DELETE("/inventory/:item", inventory.Delete)

	api.GET("/cablestock", cablestock.List)
	api.POST("/cablestock/upload", cablestock.Upload)
	api.GET("/cablestock/compare", cablestock.Compare)
	api.GET("/cablestock/:month", cablestock.Get)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("client_ip", c.ClientIP()))
	}
}
