package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finview/finview/internal/fundamentals"
	"github.com/finview/finview/internal/market"
	"github.com/finview/finview/internal/ratelimit"
	"github.com/finview/finview/internal/risk"
	"github.com/finview/finview/internal/tier"
	"github.com/finview/finview/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubMarket struct {
	quote      *market.Quote
	quoteCalls int
}

func (s *stubMarket) GetQuote(_ context.Context, _ string) *market.Quote {
	s.quoteCalls++
	return s.quote
}

func (s *stubMarket) GetQuotes(_ context.Context, symbols []string) []market.Quote {
	if s.quote == nil {
		return nil
	}
	out := make([]market.Quote, 0, len(symbols))
	for range symbols {
		out = append(out, *s.quote)
	}
	return out
}

func (s *stubMarket) SearchSymbols(_ context.Context, _ string) []market.SymbolResult {
	return []market.SymbolResult{{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NMS", Type: "EQUITY"}}
}

func (s *stubMarket) GetChartData(_ context.Context, _ string, _ market.Range) []market.PricePoint {
	return []market.PricePoint{{Timestamp: 1, Close: 10}}
}

func (s *stubMarket) GetIndices(_ context.Context) []market.Index {
	return []market.Index{{Symbol: "SPY", Name: "S&P 500", Price: 510}}
}

func (s *stubMarket) GetSectors(_ context.Context) []market.Sector {
	return []market.Sector{{Symbol: "XLK", Name: "Technology"}}
}

type stubFunds struct {
	metrics  *fundamentals.Metrics
	lastTier tier.Tier
}

func (s *stubFunds) GetFundamentals(_ context.Context, _ string, t tier.Tier) *fundamentals.Metrics {
	s.lastTier = t
	return s.metrics
}

type stubRisk struct{}

func (s *stubRisk) CalculateRiskMetrics(_ context.Context, symbol string, _ []market.PricePoint,
	_ *fundamentals.Metrics, _, _ *float64) *risk.Profile {
	return &risk.Profile{Symbol: symbol, OverallRiskScore: 50, RiskLevel: risk.Medium}
}

type stubWatch struct {
	items  []user.WatchItem
	addErr error
}

func (s *stubWatch) Watchlist(_ string) ([]user.WatchItem, error) {
	return s.items, nil
}

func (s *stubWatch) AddToWatchlist(userID, symbol string, _ tier.Tier) (*user.WatchItem, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &user.WatchItem{UserID: userID, Symbol: symbol}, nil
}

func (s *stubWatch) RemoveFromWatchlist(_, symbol string) (bool, error) {
	for _, item := range s.items {
		if item.Symbol == symbol {
			return true, nil
		}
	}
	return false, nil
}

type stubTiers struct {
	t tier.Tier
}

func (s *stubTiers) Tier(_ string) tier.Tier { return s.t }

type stubLimiter struct {
	deny bool
}

func (s *stubLimiter) Check(_ context.Context, class ratelimit.Class, identity string, t tier.Tier) ratelimit.Decision {
	cfg := ratelimit.GetConfig(class, t)
	if s.deny {
		return ratelimit.Decision{
			Identity: identity, Class: class, Tier: t,
			Success: false, Remaining: 0,
			Reset: time.Now().Add(30 * time.Second), Limit: cfg.Requests,
		}
	}
	return ratelimit.Decision{
		Identity: identity, Class: class, Tier: t,
		Success: true, Remaining: cfg.Requests - 1,
		Reset: time.Now().Add(cfg.Window), Limit: cfg.Requests,
	}
}

type testEnv struct {
	router  *gin.Engine
	market  *stubMarket
	funds   *stubFunds
	watch   *stubWatch
	limiter *stubLimiter
}

func newTestEnv(t tier.Tier) *testEnv {
	env := &testEnv{
		market:  &stubMarket{},
		funds:   &stubFunds{},
		watch:   &stubWatch{},
		limiter: &stubLimiter{},
	}
	h := NewHandler(env.market, env.funds, &stubRisk{}, env.watch)
	env.router = NewRouter(h, &stubTiers{t: t}, env.limiter)
	return env
}

func (e *testEnv) do(method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthOpenWithoutIdentity(t *testing.T) {
	env := newTestEnv(tier.Free)
	w := env.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingIdentityRejected(t *testing.T) {
	env := newTestEnv(tier.Free)
	w := env.do(http.MethodGet, "/stocks/AAPL/quote", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetQuoteFoundWithRateLimitHeaders(t *testing.T) {
	env := newTestEnv(tier.Free)
	env.market.quote = &market.Quote{Symbol: "AAPL", Price: 182.5}

	w := env.do(http.MethodGet, "/stocks/AAPL/quote", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var q market.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "AAPL", q.Symbol)

	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetQuoteNotFound(t *testing.T) {
	env := newTestEnv(tier.Free)
	w := env.do(http.MethodGet, "/stocks/NOPE/quote", "u1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidSymbolRejectedBeforeLookup(t *testing.T) {
	env := newTestEnv(tier.Free)
	w := env.do(http.MethodGet, "/stocks/WAYTOOLONGSYMBOL/quote", "u1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.market.quoteCalls, "no market call should happen for an invalid symbol")
}

func TestRateLimitDenial(t *testing.T) {
	env := newTestEnv(tier.Free)
	env.limiter.deny = true

	w := env.do(http.MethodGet, "/stocks/AAPL/quote", "u1", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Zero(t, env.market.quoteCalls, "no market call should happen past the limit")
}

func TestGetQuotesRequiresSymbols(t *testing.T) {
	env := newTestEnv(tier.Free)
	w := env.do(http.MethodGet, "/stocks/quotes", "u1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(tier.Free)

	w := env.do(http.MethodGet, "/stocks/search", "u1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/stocks/search?q=apple", "u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetFundamentalsUsesRequesterTier(t *testing.T) {
	env := newTestEnv(tier.Pro)
	env.funds.metrics = &fundamentals.Metrics{Symbol: "AAPL"}

	w := env.do(http.MethodGet, "/stocks/AAPL/fundamentals", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tier.Pro, env.funds.lastTier)
}

func TestGetFundamentalsNotFound(t *testing.T) {
	env := newTestEnv(tier.Free)
	w := env.do(http.MethodGet, "/stocks/ZZZZ/fundamentals", "u1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRisk(t *testing.T) {
	env := newTestEnv(tier.Free)
	env.market.quote = &market.Quote{Symbol: "AAPL", Price: 182.5, MarketCap: 2.8e12, AvgVolume: 60_000_000}

	w := env.do(http.MethodGet, "/stocks/AAPL/risk", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var profile risk.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "AAPL", profile.Symbol)
	assert.Equal(t, risk.Medium, profile.RiskLevel)
}

func TestWatchlistAddLimitReached(t *testing.T) {
	env := newTestEnv(tier.Free)
	env.watch.addErr = user.ErrWatchLimitReached

	w := env.do(http.MethodPost, "/user/watchlist", "u1", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWatchlistAddDuplicate(t *testing.T) {
	env := newTestEnv(tier.Free)
	env.watch.addErr = user.ErrAlreadyWatched

	w := env.do(http.MethodPost, "/user/watchlist", "u1", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWatchlistAddAndRemove(t *testing.T) {
	env := newTestEnv(tier.Pro)

	w := env.do(http.MethodPost, "/user/watchlist", "u1", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	env.watch.items = []user.WatchItem{{UserID: "u1", Symbol: "AAPL"}}
	w = env.do(http.MethodDelete, "/user/watchlist/AAPL", "u1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, "/user/watchlist/MSFT", "u1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWatchlistEnrichedWithQuotes(t *testing.T) {
	env := newTestEnv(tier.Free)
	env.watch.items = []user.WatchItem{{UserID: "u1", Symbol: "AAPL"}}
	env.market.quote = &market.Quote{Symbol: "AAPL", Price: 182.5}

	w := env.do(http.MethodGet, "/user/watchlist", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []struct {
			Symbol string        `json:"symbol"`
			Quote  *market.Quote `json:"quote"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].Quote)
	assert.Equal(t, 182.5, resp.Items[0].Quote.Price)
}
