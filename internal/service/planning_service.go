package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/replanhq/replan/internal/cache"
	"github.com/replanhq/replan/internal/domain"
	"github.com/replanhq/replan/internal/planning"
	"github.com/replanhq/replan/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultHorizonPeriods = 26

// PlanningService orchestrates proposal generation: it assembles the
// calculator's inputs from the planning, calendar and catalog repositories,
// runs the engine, and wraps the result. The engine itself stays pure; the
// service owns every I/O concern around it.
type PlanningService struct {
	planningRepo repository.PlanningRepository
	calendarRepo repository.CalendarRepository
	catalogRepo  repository.CatalogRepository
	cache        cache.PurchaseProposalCache
	horizon      int
}

func NewPlanningService(
	planningRepo repository.PlanningRepository,
	calendarRepo repository.CalendarRepository,
	catalogRepo repository.CatalogRepository,
	cacheImpl cache.PurchaseProposalCache,
	horizonPeriods int,
) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPurchaseProposalCache()
	}
	if horizonPeriods <= 0 {
		horizonPeriods = defaultHorizonPeriods
	}
	return &PlanningService{
		planningRepo: planningRepo,
		calendarRepo: calendarRepo,
		catalogRepo:  catalogRepo,
		cache:        cacheImpl,
		horizon:      horizonPeriods,
	}
}

// ProductionProposals runs the calculator for an item and returns the orders
// typed as production proposals.
func (s *PlanningService) ProductionProposals(ctx context.Context, req domain.ProposalRequest) (*domain.ProductionProposalResponse, error) {
	asOf := resolveAsOf(req.AsOf)

	plan, periods, err := s.loadPlanningInputs(ctx, req, asOf)
	if err != nil {
		return nil, err
	}

	return &domain.ProductionProposalResponse{
		ItemID:    req.ItemID,
		Location:  req.Location,
		AsOf:      asOf,
		Proposals: planning.ProductionOrders(plan, periods, asOf),
	}, nil
}

// PurchaseProposals runs the calculator and the purchasing adapter for an
// item. Results are cached per request identity; cache failures only log.
func (s *PlanningService) PurchaseProposals(ctx context.Context, req domain.ProposalRequest) (*domain.PurchaseProposalResponse, error) {
	asOf := resolveAsOf(req.AsOf)
	cacheReq := req
	cacheReq.AsOf = asOf

	if resp, ok, err := s.cache.Get(ctx, cacheReq); err == nil && ok {
		return resp, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get purchase proposals failed")
	}

	var (
		plan    planning.ItemPlanning
		periods []planning.Period
		item    *domain.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, periods, err = s.loadPlanningInputs(gctx, req, asOf)
		return err
	})
	g.Go(func() error {
		var err error
		item, err = s.catalogRepo.GetItem(gctx, req.ItemID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := map[int64]planning.CatalogItem{}
	if item != nil {
		items[item.ID] = planning.CatalogItem{
			ID:            item.ID,
			Code:          item.Code,
			Description:   item.Description,
			UnitOfMeasure: item.UnitOfMeasure,
		}
	}

	resp := &domain.PurchaseProposalResponse{
		ItemID:    req.ItemID,
		Location:  req.Location,
		AsOf:      asOf,
		Proposals: planning.PurchaseOrders(plan, periods, asOf, items, req.SupplierID),
	}

	if err := s.cache.Set(ctx, cacheReq, resp); err != nil {
		log.Warn().Err(err).Msg("planning: cache set purchase proposals failed")
	}

	return resp, nil
}

// GetItemPlanning returns the assembled planning record as the calculator
// would see it, with projections aligned to the current horizon.
func (s *PlanningService) GetItemPlanning(ctx context.Context, itemID int64, location string, asOf time.Time) (*planning.ItemPlanning, []planning.Period, error) {
	req := domain.ProposalRequest{ItemID: itemID, Location: location}
	plan, periods, err := s.loadPlanningInputs(ctx, req, resolveAsOf(asOf))
	if err != nil {
		return nil, nil, err
	}
	return &plan, periods, nil
}

func (s *PlanningService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	return s.planningRepo.ListPlannableItems(ctx, filter)
}

func (s *PlanningService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	return s.catalogRepo.ListSuppliers(ctx)
}

func (s *PlanningService) GetPeriods(ctx context.Context, from time.Time, count int) ([]domain.Period, error) {
	if count <= 0 {
		count = s.horizon
	}
	return s.calendarRepo.GetPeriods(ctx, resolveAsOf(from), count)
}

// InvalidateProposalCache drops every cached purchase proposal, typically
// after a projection reload.
func (s *PlanningService) InvalidateProposalCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// loadPlanningInputs fetches the planning record, its projections and the
// calendar concurrently, then aligns projections positionally with the
// returned periods.
func (s *PlanningService) loadPlanningInputs(ctx context.Context, req domain.ProposalRequest, asOf time.Time) (planning.ItemPlanning, []planning.Period, error) {
	horizon := req.Horizon
	if horizon <= 0 {
		horizon = s.horizon
	}

	var (
		row         *domain.PlanningRow
		projections []domain.ProjectionRow
		periodRows  []domain.Period
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		row, err = s.planningRepo.GetPlanningRecord(gctx, req.ItemID, req.Location)
		return err
	})
	g.Go(func() error {
		var err error
		projections, err = s.planningRepo.GetProjections(gctx, req.ItemID, req.Location)
		return err
	})
	g.Go(func() error {
		var err error
		periodRows, err = s.calendarRepo.GetPeriods(gctx, asOf, horizon)
		return err
	})
	if err := g.Wait(); err != nil {
		return planning.ItemPlanning{}, nil, fmt.Errorf("failed to load planning inputs: %w", err)
	}

	periods := make([]planning.Period, 0, len(periodRows))
	for _, p := range periodRows {
		periods = append(periods, planning.Period{ID: p.ID, StartDate: p.StartDate})
	}

	return buildItemPlanning(row, projections, periods), periods, nil
}

// buildItemPlanning converts a stored planning row into the calculator's
// input shape. Unknown policies pass through (the calculator no-ops them)
// and malformed supplier terms degrade to an empty list.
func buildItemPlanning(row *domain.PlanningRow, projections []domain.ProjectionRow, periods []planning.Period) planning.ItemPlanning {
	byPeriod := make(map[int64]float64, len(projections))
	for _, pr := range projections {
		byPeriod[pr.PeriodID] = pr.Quantity
	}

	aligned := make([]float64, len(periods))
	for i, p := range periods {
		aligned[i] = byPeriod[p.ID]
	}

	var terms []planning.SupplierTerm
	if len(row.SuppliersJSON) > 0 {
		if err := json.Unmarshal(row.SuppliersJSON, &terms); err != nil {
			log.Warn().Err(err).Int64("item_id", row.ItemID).Msg("planning: malformed supplier terms, ignoring")
			terms = nil
		}
	}

	return planning.ItemPlanning{
		ItemID:                   row.ItemID,
		Location:                 row.Location,
		Policy:                   planning.ReorderingPolicy(row.ReorderingPolicy),
		ReorderPoint:             row.ReorderPoint,
		ReorderQuantity:          row.ReorderQuantity,
		DemandAccumulationPeriod: row.DemandAccumulationPeriod,
		DemandSafetyStock:        row.DemandSafetyStock,
		MaximumInventory:         row.MaximumInventory,
		LeadTimeDays:             row.LeadTimeDays,
		LotSize:                  row.LotSize,
		MinimumOrderQuantity:     row.MinimumOrderQuantity,
		MaximumOrderQuantity:     row.MaximumOrderQuantity,
		OrderMultiple:            row.OrderMultiple,
		Projections:              aligned,
		PreferredSupplierID:      row.PreferredSupplierID,
		Suppliers:                terms,
	}
}

// resolveAsOf defaults a zero reference date to the server's current time.
// Callers that need reproducible runs pass an explicit date.
func resolveAsOf(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return time.Now()
	}
	return asOf
}
