package market

import (
	"time"

	"github.com/finview/finview/internal/cache"
)

// Quote is a normalized real-time quote. Symbols are always uppercase and
// trimmed; a quote without a positive price is treated as not found and is
// never cached.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Exchange      string    `json:"exchange"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	PreviousClose float64   `json:"previousClose"`
	Volume        int64     `json:"volume"`
	AvgVolume     int64     `json:"avgVolume"`
	MarketCap     float64   `json:"marketCap"`
	PERatio       *float64  `json:"peRatio"`
	WeekHigh52    float64   `json:"weekHigh52"`
	WeekLow52     float64   `json:"weekLow52"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PricePoint is one OHLCV bar. Sequences are ordered ascending by timestamp
// and immutable once cached.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // unix milliseconds
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// SymbolResult is one symbol-search hit.
type SymbolResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

// Index is a major market index quote.
type Index struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	PreviousClose float64   `json:"previousClose"`
	DayHigh       float64   `json:"dayHigh"`
	DayLow        float64   `json:"dayLow"`
	Volume        int64     `json:"volume"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sector is a sector ETF snapshot.
type Sector struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// Range is a chart time range.
type Range string

const (
	Range1D Range = "1D"
	Range1W Range = "1W"
	Range1M Range = "1M"
	Range3M Range = "3M"
	Range1Y Range = "1Y"
	Range5Y Range = "5Y"
)

// ParseRange validates a chart range string.
func ParseRange(s string) (Range, bool) {
	switch Range(s) {
	case Range1D, Range1W, Range1M, Range3M, Range1Y, Range5Y:
		return Range(s), true
	}
	return "", false
}

// rangeSpec binds a range to its bar interval, lookback window and cache TTL.
type rangeSpec struct {
	interval string
	days     int
	ttl      time.Duration
}

var rangeSpecs = map[Range]rangeSpec{
	Range1D: {interval: "5m", days: 1, ttl: cache.TTLChartIntraday},
	Range1W: {interval: "30m", days: 7, ttl: cache.TTLChartShort},
	Range1M: {interval: "1d", days: 30, ttl: cache.TTLChartDaily},
	Range3M: {interval: "1d", days: 90, ttl: cache.TTLChartDaily},
	Range1Y: {interval: "1d", days: 365, ttl: cache.TTLChartDaily},
	Range5Y: {interval: "1wk", days: 1825, ttl: cache.TTLChartWeekly},
}
