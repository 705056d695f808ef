package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/replanhq/replan/internal/domain"
	"github.com/replanhq/replan/internal/service"
)

type CatalogHandler struct {
	planningService *service.PlanningService
}

func NewCatalogHandler(planningService *service.PlanningService) *CatalogHandler {
	return &CatalogHandler{planningService: planningService}
}

// GetItems returns plannable items with optional search
func (h *CatalogHandler) GetItems(c *gin.Context) {
	filter := domain.ItemFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  parsePositiveIntWithDefault(c.Query("limit"), 50),
		Offset: parseNonNegativeInt(c.Query("offset")),
	}

	items, err := h.planningService.ListItems(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetSuppliers returns the supplier list
func (h *CatalogHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.planningService.ListSuppliers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch suppliers"})
		return
	}

	c.JSON(http.StatusOK, suppliers)
}

// GetPeriods returns the planning calendar from an optional start date
func (h *CatalogHandler) GetPeriods(c *gin.Context) {
	var from time.Time
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}

	count := parsePositiveIntWithDefault(c.Query("count"), 0)

	periods, err := h.planningService.GetPeriods(c.Request.Context(), from, count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch periods"})
		return
	}

	c.JSON(http.StatusOK, periods)
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseNonNegativeInt(value string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v >= 0 {
		return v
	}
	return 0
}
