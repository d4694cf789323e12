package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/restock/pkg/application/services"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/repositories"
)

// PlanningOrchestrator runs recommendations for SKUs whose stock parameters
// and sales history live in repositories
type PlanningOrchestrator struct {
	planningService *services.PlanningService
	productRepo     repositories.ProductRepository
	salesRepo       repositories.SalesRepository
}

// NewPlanningOrchestrator creates a new planning orchestrator
func NewPlanningOrchestrator(
	planningService *services.PlanningService,
	productRepo repositories.ProductRepository,
	salesRepo repositories.SalesRepository,
) *PlanningOrchestrator {
	return &PlanningOrchestrator{
		planningService: planningService,
		productRepo:     productRepo,
		salesRepo:       salesRepo,
	}
}

// PlanningResult is a recommendation together with the product it was made for
type PlanningResult struct {
	Product        *entities.Product
	Recommendation *services.Recommendation
	PlanningDate   time.Time
	HistoryDays    int
}

// RunPlanning loads the product and sales history of sku and runs a
// recommendation over them. horizonDays of 0 means the service default.
func (po *PlanningOrchestrator) RunPlanning(ctx context.Context, sku entities.SKU, horizonDays int) (*PlanningResult, error) {
	if sku == "" {
		return nil, fmt.Errorf("no SKU provided for planning")
	}

	product, err := po.productRepo.GetProduct(sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	history, err := po.salesRepo.GetSalesHistory(sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}

	rec, err := po.planningService.Recommend(ctx, services.RecommendInput{
		SKU:          sku,
		History:      history,
		CurrentStock: product.CurrentStock,
		LeadTimeDays: product.LeadTimeDays,
		SafetyStock:  product.SafetyStock,
		HorizonDays:  horizonDays,
	})
	if err != nil {
		return nil, err
	}

	return &PlanningResult{
		Product:        product,
		Recommendation: rec,
		PlanningDate:   time.Now(),
		HistoryDays:    len(history),
	}, nil
}

// GetSummary returns a formatted summary of the planning result
func (result *PlanningResult) GetSummary() string {
	rec := result.Recommendation
	summary := fmt.Sprintf("Planning Summary for %s (%d days of history):\n", result.Product.SKU, result.HistoryDays)
	summary += fmt.Sprintf("  Forecast: %s, %d days\n", rec.Forecast.Model, len(rec.Forecast.Predictions))
	summary += fmt.Sprintf("  Demand: avg %.2f/day, CV %.2f, seasonal %t\n",
		rec.Demand.AvgDaily,
		rec.Demand.CoefficientOfVariation,
		rec.Demand.SeasonalityDetected)
	summary += fmt.Sprintf(
		"  Restock: %s, order %d on %s",
		rec.Restock.Urgency,
		rec.Restock.SuggestedQuantity,
		rec.Restock.SuggestedOrderDate,
	)
	return summary
}
