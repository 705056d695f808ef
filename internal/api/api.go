package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/replanhq/replan/internal/api/handlers"
	"github.com/replanhq/replan/internal/api/middleware"
	"github.com/replanhq/replan/internal/service"
)

func NewRouter(planningService *service.PlanningService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if planningService != nil {
		catalogHandler := handlers.NewCatalogHandler(planningService)
		apiGroup.GET("/items", catalogHandler.GetItems)
		apiGroup.GET("/suppliers", catalogHandler.GetSuppliers)
		apiGroup.GET("/periods", catalogHandler.GetPeriods)

		planningHandler := handlers.NewPlanningHandler(planningService)
		apiGroup.GET("/items/:id/planning", planningHandler.GetItemPlanning)

		planningGroup := apiGroup.Group("/planning")
		{
			planningGroup.POST("/production-proposals", planningHandler.ProductionProposals)
			planningGroup.POST("/purchase-proposals", planningHandler.PurchaseProposals)
			planningGroup.DELETE("/cache", planningHandler.InvalidateCache)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
