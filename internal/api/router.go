package api

import (
	"github.com/gin-gonic/gin"

	"github.com/finview/finview/internal/ratelimit"
)

// NewRouter assembles the HTTP surface: identity and rate limiting in
// front, then the read endpoints. Search carries its own stricter budget.
func NewRouter(h *Handler, tiers TierSource, limiter RateChecker) *gin.Engine {
	router := gin.Default()
	router.Use(RequestID())

	router.GET("/health", h.HealthCheck)

	authed := router.Group("/", Identity(tiers))

	api := authed.Group("/", RateLimit(limiter, ratelimit.ClassAPI))
	api.GET("/stocks/quotes", h.GetQuotes)
	api.GET("/stocks/:symbol/quote", h.GetQuote)
	api.GET("/stocks/:symbol/chart", h.GetChartData)
	api.GET("/stocks/:symbol/fundamentals", h.GetFundamentals)
	api.GET("/stocks/:symbol/risk", h.GetRisk)
	api.GET("/market/indices", h.GetIndices)
	api.GET("/market/sectors", h.GetSectors)
	api.GET("/user/watchlist", h.GetWatchlist)
	api.POST("/user/watchlist", h.AddWatchSymbol)
	api.DELETE("/user/watchlist/:symbol", h.RemoveWatchSymbol)

	search := authed.Group("/", RateLimit(limiter, ratelimit.ClassSearch))
	search.GET("/stocks/search", h.SearchSymbols)

	return router
}
