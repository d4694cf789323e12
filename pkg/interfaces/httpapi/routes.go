package httpapi

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the planning endpoints with the router group.
//
//	GET  /health             - Liveness and model availability
//	POST /predict/forecast   - Daily demand forecast
//	POST /analyze/demand     - Volatility and weekday seasonality
//	POST /restock/calculate  - Reorder decision for a given forecast
//	POST /recommend          - Forecast, analysis and reorder in one call
//	GET  /events             - Recent planning events, when a store is attached
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.GET("/health", handlers.HandleHealth)

	rg.POST("/predict/forecast", handlers.HandleForecast)
	rg.POST("/analyze/demand", handlers.HandleAnalyzeDemand)
	rg.POST("/restock/calculate", handlers.HandleCalculateRestock)
	rg.POST("/recommend", handlers.HandleRecommend)

	if handlers.store != nil {
		rg.GET("/events", handlers.HandleEvents)
	}
}
