package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/stormgrab/stormgrab/internal/api/docs" // swagger docs
	"github.com/stormgrab/stormgrab/internal/api/handlers"
)

// RegisterRoutes wires the read-only management API (spec §4.K): health,
// stats, and the Swagger UI. There is no write surface — scan
// configuration is immutable after startup by design.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health)
	v1.GET("/stats", h.Stats)
}
