package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsinha/restock/pkg/application/dto"
	"github.com/vsinha/restock/pkg/application/services"
	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/events"
	"github.com/vsinha/restock/pkg/infrastructure/eventbus"
)

// Handlers contains the HTTP handlers for the planning service.
type Handlers struct {
	svc    *services.PlanningService
	logger *slog.Logger
	store  eventbus.EventStore
	clock  func() time.Time
}

// NewHandlers creates handlers for the given service. A nil logger means
// slog.Default().
func NewHandlers(svc *services.PlanningService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger, clock: time.Now}
}

// WithEventStore lets HandleEvents read recent planning events from store
func (h *Handlers) WithEventStore(store eventbus.EventStore) *Handlers {
	h.store = store
	return h
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:            "healthy",
		AdvancedAvailable: h.svc.Model() == entities.ModelAdvanced,
		Timestamp:         h.clock().Format(time.RFC3339),
	})
}

// HandleForecast handles POST /predict/forecast.
//
// Response:
//
//	200 OK: ForecastResponse
//	400 Bad Request: malformed body or insufficient history
//	422 Unprocessable Entity: the history cannot be modelled
func (h *Handlers) HandleForecast(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleForecast")

	var req dto.ForecastRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	logger.Info("Forecasting", "data_points", len(req.DS))

	series, err := req.Series()
	if err != nil {
		writeError(c, logger, err, "FORECAST_FAILED")
		return
	}

	result, err := h.svc.Forecast(c.Request.Context(), series, req.Horizon(h.svc.DefaultHorizon()))
	if err != nil {
		writeError(c, logger, err, "FORECAST_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewForecastResponse(result))
}

// HandleAnalyzeDemand handles POST /analyze/demand.
func (h *Handlers) HandleAnalyzeDemand(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleAnalyzeDemand")

	var req dto.DemandAnalysisRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	logger.Info("Analyzing demand", "sku", req.SKU, "days", len(req.SalesHistory))

	history, err := dto.SalesHistory(req.SalesHistory)
	if err != nil {
		writeError(c, logger, err, "ANALYSIS_FAILED")
		return
	}

	profile, err := h.svc.AnalyzeDemand(c.Request.Context(), entities.SKU(req.SKU), history)
	if err != nil {
		writeError(c, logger, err, "ANALYSIS_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewDemandAnalysisResponse(profile))
}

// HandleCalculateRestock handles POST /restock/calculate.
func (h *Handlers) HandleCalculateRestock(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleCalculateRestock")

	var req dto.RestockRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	logger.Info("Calculating restock", "product_id", req.ProductID, "forecast_days", len(req.Forecast))

	decision, err := h.svc.CalculateRestock(c.Request.Context(), req.PlanInput())
	if err != nil {
		writeError(c, logger, err, "RESTOCK_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewRestockResponse(req.ProductID, decision))
}

// HandleRecommend handles POST /recommend.
//
// Description:
//
//	Forecasts and analyses one sales history concurrently, then plans the
//	reorder against the forecast.
func (h *Handlers) HandleRecommend(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleRecommend")

	var req dto.RecommendRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	logger.Info("Recommending", "sku", req.SKU, "days", len(req.SalesHistory))

	history, err := dto.SalesHistory(req.SalesHistory)
	if err != nil {
		writeError(c, logger, err, "RECOMMEND_FAILED")
		return
	}

	rec, err := h.svc.Recommend(c.Request.Context(), services.RecommendInput{
		SKU:          entities.SKU(req.SKU),
		History:      history,
		CurrentStock: req.CurrentStock,
		LeadTimeDays: req.LeadTimeDays,
		SafetyStock:  req.SafetyStock,
		HorizonDays:  req.Horizon(0),
	})
	if err != nil {
		writeError(c, logger, err, "RECOMMEND_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.RecommendResponse{
		Forecast: dto.NewForecastResponse(rec.Forecast),
		Demand:   dto.NewDemandAnalysisResponse(rec.Demand),
		Restock:  dto.NewRestockResponse(req.SKU, rec.Restock),
	})
}

// HandleEvents handles GET /events.
//
// Query:
//
//	stream: read one stream, from the version given by from (default 1)
//	from:   without stream, the first position to return (default 0)
func (h *Handlers) HandleEvents(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleEvents")

	if h.store == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "event store not configured", Code: "NOT_FOUND"})
		return
	}

	var query dto.EventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Invalid query", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid query",
			Code:    "INVALID_REQUEST",
			Details: describeBindError(err),
		})
		return
	}

	next := h.store.Position()
	var (
		list []events.Event
		err  error
	)
	if query.Stream != "" {
		list, err = h.store.ReadEvents(query.Stream, max(query.From, 1))
	} else {
		list, err = h.store.ReadAllEvents(query.From)
	}
	if err != nil {
		writeError(c, logger, err, "EVENTS_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewEventsResponse(list, next))
}

func bindJSON(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: describeBindError(err),
		})
		return false
	}
	return true
}

// writeError maps validation errors to 400 and computation errors to 422.
// Anything else is a 500 carrying failCode.
func writeError(c *gin.Context, logger *slog.Logger, err error, failCode string) {
	var validationErr *entities.ValidationError
	var computationErr *entities.ComputationError

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Validation failed", "field", validationErr.Field, "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   validationErr.Reason,
			Code:    "VALIDATION_FAILED",
			Details: validationErr.Field,
		})
	case errors.As(err, &computationErr):
		logger.Error("Computation failed", "op", computationErr.Op, "error", err)
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "COMPUTATION_FAILED",
			Details: computationErr.Op,
		})
	default:
		logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: err.Error(),
			Code:  failCode,
		})
	}
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
