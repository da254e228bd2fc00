package cache

import (
	"context"
	"strings"
	"time"
)

// TTLs per data class. Volatile data expires fast, slow-moving data is kept
// around for up to a day.
const (
	TTLQuote        = 60 * time.Second
	TTLSearch       = time.Hour
	TTLFundamentals = time.Hour
	TTLRisk         = time.Hour
	TTLIndices      = 60 * time.Second
	TTLSectors      = 60 * time.Second

	TTLChartIntraday = 60 * time.Second // 1D, 5-minute bars
	TTLChartShort    = 5 * time.Minute  // 1W, 30-minute bars
	TTLChartDaily    = time.Hour        // 1M/3M/1Y, daily bars
	TTLChartWeekly   = 24 * time.Hour   // 5Y, weekly bars
)

// Well-known keys.
const (
	KeyIndices = "market:indices"
	KeySectors = "market:sectors"
)

func QuoteKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

func ChartKey(symbol, rng string) string {
	return "chart:" + strings.ToUpper(symbol) + ":" + rng
}

func SearchKey(query string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query))
}

func FundamentalsKey(symbol, tier string) string {
	return "fundamentals:" + strings.ToUpper(symbol) + ":" + tier
}

func RiskKey(symbol string) string {
	return "risk:" + strings.ToUpper(symbol)
}

// chartRanges mirrors the ranges the gateway serves. Kept here so
// ClearSymbol can cover every per-symbol key class without importing the
// market package.
var chartRanges = []string{"1D", "1W", "1M", "3M", "1Y", "5Y"}

// ClearSymbol drops every cached entry owned by a symbol: quote, both
// fundamentals tiers, the risk profile and all chart ranges.
func ClearSymbol(ctx context.Context, s Store, symbol string) {
	keys := []string{
		QuoteKey(symbol),
		FundamentalsKey(symbol, "free"),
		FundamentalsKey(symbol, "pro"),
		RiskKey(symbol),
	}
	for _, r := range chartRanges {
		keys = append(keys, ChartKey(symbol, r))
	}
	s.Delete(ctx, keys...)
}
