package events

import (
	"log/slog"

	"github.com/vsinha/restock/pkg/domain/entities"
)

const (
	ForecastStrategySelectedEvent = "forecast.strategy_selected"
	ForecastGeneratedEvent        = "forecast.generated"
	ForecastFailedEvent           = "forecast.failed"

	DemandAnalyzedEvent = "demand.analyzed"

	RestockPlannedEvent    = "restock.planned"
	ForecastShortfallEvent = "restock.forecast_shortfall"
)

type ForecastStrategySelected struct {
	Model  entities.ModelName `json:"model"`
	Method string             `json:"method"`
}

func (e ForecastStrategySelected) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("model", string(e.Model)), slog.String("method", e.Method)}
}

type ForecastGenerated struct {
	Model       entities.ModelName       `json:"model"`
	Metrics     entities.ForecastMetrics `json:"metrics"`
	Predictions int                      `json:"predictions"`
}

func (e ForecastGenerated) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("model", string(e.Model)),
		slog.Int("data_points", e.Metrics.DataPointCount),
		slog.Int("horizon_days", e.Metrics.ForecastHorizonDays),
	}
	if e.Metrics.ErrorRate != nil {
		attrs = append(attrs, slog.Float64("mape", *e.Metrics.ErrorRate))
	}
	return attrs
}

type ForecastFailed struct {
	Model entities.ModelName `json:"model"`
	Error string             `json:"error"`
}

func (e ForecastFailed) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("model", string(e.Model)), slog.String("error", e.Error)}
}

type DemandAnalyzed struct {
	Profile entities.DemandProfile `json:"profile"`
}

func (e DemandAnalyzed) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("sku", string(e.Profile.SKU)),
		slog.Float64("cv", e.Profile.CoefficientOfVariation),
		slog.Bool("seasonality", e.Profile.SeasonalityDetected),
	}
}

type RestockPlanned struct {
	Decision entities.RestockDecision `json:"decision"`
}

func (e RestockPlanned) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("urgency", e.Decision.Urgency.String()),
		slog.Bool("should_restock", e.Decision.ShouldRestock),
		slog.Int64("suggested_quantity", e.Decision.SuggestedQuantity),
		slog.String("order_date", e.Decision.SuggestedOrderDate.String()),
	}
}

type ForecastShortfall struct {
	LeadTimeDays int64 `json:"lead_time_days"`
	ForecastDays int   `json:"forecast_days"`
}

func (e ForecastShortfall) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.Int64("lead_time_days", e.LeadTimeDays), slog.Int("forecast_days", e.ForecastDays)}
}

func NewForecastStrategySelectedEvent(streamID string, model entities.ModelName, method string) Event {
	return NewEvent(ForecastStrategySelectedEvent, streamID, ForecastStrategySelected{Model: model, Method: method})
}

func NewForecastGeneratedEvent(streamID string, forecast *entities.Forecast) Event {
	return NewEvent(ForecastGeneratedEvent, streamID, ForecastGenerated{
		Model:       forecast.Model,
		Metrics:     forecast.Metrics,
		Predictions: len(forecast.Predictions),
	})
}

func NewForecastFailedEvent(streamID string, model entities.ModelName, err error) Event {
	return NewEvent(ForecastFailedEvent, streamID, ForecastFailed{Model: model, Error: err.Error()})
}

func NewDemandAnalyzedEvent(streamID string, profile entities.DemandProfile) Event {
	return NewEvent(DemandAnalyzedEvent, streamID, DemandAnalyzed{Profile: profile})
}

func NewRestockPlannedEvent(streamID string, decision entities.RestockDecision) Event {
	return NewEvent(RestockPlannedEvent, streamID, RestockPlanned{Decision: decision})
}

func NewForecastShortfallEvent(streamID string, leadTimeDays int64, forecastDays int) Event {
	return NewEvent(ForecastShortfallEvent, streamID, ForecastShortfall{LeadTimeDays: leadTimeDays, ForecastDays: forecastDays})
}
