package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/replanhq/replan/internal/domain"
	"github.com/replanhq/replan/internal/service"
	"github.com/rs/zerolog/log"
)

type PlanningHandler struct {
	planningService *service.PlanningService
}

func NewPlanningHandler(planningService *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{planningService: planningService}
}

type proposalPayload struct {
	ItemID     int64  `json:"item_id" binding:"required"`
	Location   string `json:"location"`
	SupplierID int64  `json:"supplier_id"`
	AsOf       string `json:"as_of"`
	Horizon    int    `json:"horizon"`
}

func (p proposalPayload) toRequest() (domain.ProposalRequest, error) {
	req := domain.ProposalRequest{
		ItemID:     p.ItemID,
		Location:   strings.TrimSpace(p.Location),
		SupplierID: p.SupplierID,
		Horizon:    p.Horizon,
	}
	if p.AsOf != "" {
		asOf, err := time.Parse("2006-01-02", p.AsOf)
		if err != nil {
			return req, err
		}
		req.AsOf = asOf
	}
	return req, nil
}

// ProductionProposals generates production order proposals for an item
func (h *PlanningHandler) ProductionProposals(c *gin.Context) {
	var payload proposalPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of date, expected YYYY-MM-DD"})
		return
	}

	resp, err := h.planningService.ProductionProposals(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Int64("item_id", req.ItemID).Msg("failed to generate production proposals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate production proposals"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PurchaseProposals generates purchase order proposals for an item
func (h *PlanningHandler) PurchaseProposals(c *gin.Context) {
	var payload proposalPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of date, expected YYYY-MM-DD"})
		return
	}

	resp, err := h.planningService.PurchaseProposals(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Int64("item_id", req.ItemID).Msg("failed to generate purchase proposals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate purchase proposals"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetItemPlanning returns the planning record the calculator would run with
func (h *PlanningHandler) GetItemPlanning(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	location := strings.TrimSpace(c.Query("location"))

	var asOf time.Time
	if v := c.Query("as_of"); v != "" {
		asOf, err = time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of date, expected YYYY-MM-DD"})
			return
		}
	}

	plan, periods, err := h.planningService.GetItemPlanning(c.Request.Context(), itemID, location, asOf)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "planning record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"planning": plan,
		"periods":  periods,
	})
}

// InvalidateCache drops all cached proposals
func (h *PlanningHandler) InvalidateCache(c *gin.Context) {
	if err := h.planningService.InvalidateProposalCache(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to invalidate proposal cache")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate proposal cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "proposal cache invalidated"})
}
