package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finview/finview/internal/fundamentals"
	"github.com/finview/finview/internal/market"
	"github.com/finview/finview/internal/risk"
	"github.com/finview/finview/internal/tier"
	"github.com/finview/finview/internal/user"
)

const (
	maxSymbolLen = 10
	maxQueryLen  = 50
)

// MarketService is the gateway surface the handlers consume.
type MarketService interface {
	GetQuote(ctx context.Context, symbol string) *market.Quote
	GetQuotes(ctx context.Context, symbols []string) []market.Quote
	SearchSymbols(ctx context.Context, query string) []market.SymbolResult
	GetChartData(ctx context.Context, symbol string, rng market.Range) []market.PricePoint
	GetIndices(ctx context.Context) []market.Index
	GetSectors(ctx context.Context) []market.Sector
}

// FundamentalsService is the aggregator surface the handlers consume.
type FundamentalsService interface {
	GetFundamentals(ctx context.Context, symbol string, t tier.Tier) *fundamentals.Metrics
}

// RiskService is the risk-engine surface the handlers consume.
type RiskService interface {
	CalculateRiskMetrics(ctx context.Context, symbol string, priceHistory []market.PricePoint,
		funds *fundamentals.Metrics, marketCap, avgVolume *float64) *risk.Profile
}

// WatchlistStore is the persistence surface the handlers consume.
type WatchlistStore interface {
	Watchlist(userID string) ([]user.WatchItem, error)
	AddToWatchlist(userID, symbol string, t tier.Tier) (*user.WatchItem, error)
	RemoveFromWatchlist(userID, symbol string) (bool, error)
}

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	market MarketService
	funds  FundamentalsService
	risk   RiskService
	watch  WatchlistStore
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(m MarketService, f FundamentalsService, r RiskService, w WatchlistStore) *Handler {
	return &Handler{market: m, funds: f, risk: r, watch: w}
}

// GetQuote handles GET /stocks/:symbol/quote
func (h *Handler) GetQuote(c *gin.Context) {
	symbol, ok := validSymbol(c)
	if !ok {
		return
	}

	quote := h.market.GetQuote(c.Request.Context(), symbol)
	if quote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found", "symbol": symbol})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetQuotes handles GET /stocks/quotes?symbols=AAPL,MSFT
func (h *Handler) GetQuotes(c *gin.Context) {
	raw := c.Query("symbols")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}
	symbols := strings.Split(raw, ",")
	for _, s := range symbols {
		if len(strings.TrimSpace(s)) > maxSymbolLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "symbol too long"})
			return
		}
	}

	quotes := h.market.GetQuotes(c.Request.Context(), symbols)
	c.JSON(http.StatusOK, gin.H{"quotes": quotes, "count": len(quotes)})
}

// SearchSymbols handles GET /stocks/search?q=apple
func (h *Handler) SearchSymbols(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	if len(query) > maxQueryLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query too long"})
		return
	}

	results := h.market.SearchSymbols(c.Request.Context(), query)
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// GetChartData handles GET /stocks/:symbol/chart?range=1M
func (h *Handler) GetChartData(c *gin.Context) {
	symbol, ok := validSymbol(c)
	if !ok {
		return
	}
	rng, ok := market.ParseRange(c.DefaultQuery("range", string(market.Range1M)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
		return
	}

	points := h.market.GetChartData(c.Request.Context(), symbol, rng)
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "range": rng, "points": points, "count": len(points)})
}

// GetFundamentals handles GET /stocks/:symbol/fundamentals
func (h *Handler) GetFundamentals(c *gin.Context) {
	symbol, ok := validSymbol(c)
	if !ok {
		return
	}

	metrics := h.funds.GetFundamentals(c.Request.Context(), symbol, currentTier(c))
	if metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fundamental data", "symbol": symbol})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetRisk handles GET /stocks/:symbol/risk
func (h *Handler) GetRisk(c *gin.Context) {
	symbol, ok := validSymbol(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// The quote supplies market cap and average volume; fundamentals
	// supply leverage. Either may be absent and the engine degrades.
	var marketCap, avgVolume *float64
	if quote := h.market.GetQuote(ctx, symbol); quote != nil {
		if quote.MarketCap > 0 {
			marketCap = &quote.MarketCap
		}
		if quote.AvgVolume > 0 {
			v := float64(quote.AvgVolume)
			avgVolume = &v
		}
	}
	funds := h.funds.GetFundamentals(ctx, symbol, currentTier(c))

	profile := h.risk.CalculateRiskMetrics(ctx, symbol, nil, funds, marketCap, avgVolume)
	c.JSON(http.StatusOK, profile)
}

// GetIndices handles GET /market/indices
func (h *Handler) GetIndices(c *gin.Context) {
	indices := h.market.GetIndices(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"indices": indices})
}

// GetSectors handles GET /market/sectors
func (h *Handler) GetSectors(c *gin.Context) {
	sectors := h.market.GetSectors(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

// watchItemResponse pairs a watch item with its current quote, which may
// be nil when the market has nothing for the symbol.
type watchItemResponse struct {
	user.WatchItem
	Quote *market.Quote `json:"quote"`
}

// GetWatchlist handles GET /user/watchlist
func (h *Handler) GetWatchlist(c *gin.Context) {
	userID := c.GetString(ctxUserID)

	items, err := h.watch.Watchlist(userID)
	if err != nil {
		slog.Error("watch list lookup failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load watch list"})
		return
	}

	symbols := make([]string, 0, len(items))
	for _, item := range items {
		symbols = append(symbols, item.Symbol)
	}
	quotes := h.market.GetQuotes(c.Request.Context(), symbols)
	bySymbol := make(map[string]market.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	out := make([]watchItemResponse, 0, len(items))
	for _, item := range items {
		resp := watchItemResponse{WatchItem: item}
		if q, ok := bySymbol[item.Symbol]; ok {
			resp.Quote = &q
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "count": len(out)})
}

// AddWatchSymbol handles POST /user/watchlist
func (h *Handler) AddWatchSymbol(c *gin.Context) {
	userID := c.GetString(ctxUserID)

	var req struct {
		Symbol string `json:"symbol" binding:"required,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.watch.AddToWatchlist(userID, req.Symbol, currentTier(c))
	switch {
	case errors.Is(err, user.ErrWatchLimitReached):
		c.JSON(http.StatusForbidden, gin.H{"error": "watch list limit reached"})
	case errors.Is(err, user.ErrAlreadyWatched):
		c.JSON(http.StatusConflict, gin.H{"error": "symbol already on watch list"})
	case err != nil:
		slog.Error("watch list add failed", "user_id", userID, "symbol", req.Symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add symbol"})
	default:
		c.JSON(http.StatusCreated, item)
	}
}

// RemoveWatchSymbol handles DELETE /user/watchlist/:symbol
func (h *Handler) RemoveWatchSymbol(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	symbol, ok := validSymbol(c)
	if !ok {
		return
	}

	removed, err := h.watch.RemoveFromWatchlist(userID, symbol)
	if err != nil {
		slog.Error("watch list remove failed", "user_id", userID, "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove symbol"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not on watch list"})
		return
	}
	c.Status(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "finview",
	})
}

// validSymbol pulls and validates the :symbol path parameter, answering
// 400 itself on bad input so no external call happens for garbage.
func validSymbol(c *gin.Context) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" || len(symbol) > maxSymbolLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol"})
		return "", false
	}
	return symbol, true
}
