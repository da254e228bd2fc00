package risk

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/finview/finview/internal/cache"
	"github.com/finview/finview/internal/fundamentals"
	"github.com/finview/finview/internal/market"
)

// BenchmarkSymbol is the index beta is computed against.
const BenchmarkSymbol = "SPY"

// ChartSource supplies price history. The market gateway satisfies this.
type ChartSource interface {
	GetChartData(ctx context.Context, symbol string, rng market.Range) []market.PricePoint
}

// Engine computes composite risk profiles. The math is deterministic:
// identical inputs always produce the identical score and level.
type Engine struct {
	store  cache.Store
	charts ChartSource
}

// NewEngine creates a risk engine over the given cache and chart source.
func NewEngine(store cache.Store, charts ChartSource) *Engine {
	return &Engine{store: store, charts: charts}
}

// CalculateRiskMetrics builds the risk profile for a symbol. priceHistory,
// funds, marketCap and avgVolume are optional: missing history is fetched
// through the chart source, missing fundamentals degrade the affected
// components to their medium default.
func (e *Engine) CalculateRiskMetrics(
	ctx context.Context,
	symbol string,
	priceHistory []market.PricePoint,
	funds *fundamentals.Metrics,
	marketCap *float64,
	avgVolume *float64,
) *Profile {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	key := cache.RiskKey(sym)
	var cached Profile
	if cache.GetJSON(ctx, e.store, key, &cached) {
		return &cached
	}

	var prices []float64
	if len(priceHistory) > 0 {
		prices = closes(priceHistory)
	} else {
		prices = closes(e.charts.GetChartData(ctx, sym, market.Range1Y))
	}
	benchPrices := closes(e.charts.GetChartData(ctx, BenchmarkSymbol, market.Range1Y))

	stockReturns := dailyReturns(prices)
	benchReturns := dailyReturns(benchPrices)

	b := beta(stockReturns, benchReturns)

	var vol30, vol90, drawdown *float64
	if rets := tail(stockReturns, 30); len(rets) >= 20 {
		v := annualizedVolatility(rets)
		vol30 = &v
	}
	if rets := tail(stockReturns, 90); len(rets) >= 60 {
		v := annualizedVolatility(rets)
		vol90 = &v
	}
	if len(prices) > 0 {
		dd := maxDrawdown(prices)
		drawdown = &dd
	}

	var debtToEquity, interestCoverage *float64
	if funds != nil {
		debtToEquity = funds.Leverage.DebtToEquity
		interestCoverage = funds.Leverage.InterestCoverage
	}
	debtRisk := debtRiskLevel(debtToEquity)
	coverageRisk := coverageRiskLevel(interestCoverage)

	volumeRisk := volumeRiskLevel(avgVolume)
	capCategory := marketCapCategory(marketCap)

	marketScore := marketRiskScore(b, vol30, vol90, drawdown)
	fundamentalScore := (levelScore(debtRisk) + levelScore(coverageRisk)) / 2
	liquidityScore := liquidityRiskScore(volumeRisk, capCategory)

	overall := int(math.Round(marketScore*0.4 + fundamentalScore*0.3 + liquidityScore*0.3))

	profile := &Profile{
		Symbol:           sym,
		OverallRiskScore: overall,
		RiskLevel:        scoreLevel(overall),
		MarketRisk: MarketRisk{
			Beta:          b,
			Volatility30D: vol30,
			Volatility90D: vol90,
			MaxDrawdown1Y: drawdown,
		},
		FundamentalRisk: FundamentalRisk{
			DebtRisk:             debtRisk,
			InterestCoverageRisk: coverageRisk,
		},
		LiquidityRisk: LiquidityRisk{
			AvgDailyVolume:    avgVolume,
			VolumeRisk:        volumeRisk,
			MarketCapCategory: capCategory,
		},
		LastUpdated: time.Now().UTC(),
	}

	cache.SetJSON(ctx, e.store, key, profile, cache.TTLRisk)
	return profile
}

func closes(points []market.PricePoint) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.Close)
	}
	return out
}

// debtRiskLevel buckets debt-to-equity. Unknown leverage defaults to
// medium rather than assuming the best.
func debtRiskLevel(debtToEquity *float64) Level {
	if debtToEquity == nil {
		return Medium
	}
	switch {
	case *debtToEquity < 0.5:
		return Low
	case *debtToEquity <= 1.5:
		return Medium
	default:
		return High
	}
}

func coverageRiskLevel(interestCoverage *float64) Level {
	if interestCoverage == nil {
		return Medium
	}
	switch {
	case *interestCoverage > 5:
		return Low
	case *interestCoverage >= 2:
		return Medium
	default:
		return High
	}
}

func volumeRiskLevel(avgVolume *float64) Level {
	if avgVolume == nil {
		return Medium
	}
	switch {
	case *avgVolume > 1_000_000:
		return Low
	case *avgVolume >= 100_000:
		return Medium
	default:
		return High
	}
}

func marketCapCategory(marketCap *float64) CapCategory {
	if marketCap == nil {
		return MidCap
	}
	switch {
	case *marketCap >= 200_000_000_000:
		return MegaCap
	case *marketCap >= 10_000_000_000:
		return LargeCap
	case *marketCap >= 2_000_000_000:
		return MidCap
	case *marketCap >= 300_000_000:
		return SmallCap
	default:
		return MicroCap
	}
}

// levelScore maps a qualitative level onto the 0-100 scale.
func levelScore(l Level) float64 {
	switch l {
	case Low:
		return 20
	case High:
		return 80
	default:
		return 50
	}
}

// scoreLevel derives the categorical level from a composite score.
func scoreLevel(score int) Level {
	switch {
	case score <= 33:
		return Low
	case score <= 66:
		return Medium
	default:
		return High
	}
}

// marketRiskScore blends beta, both volatilities and drawdown, each
// rescaled into 0-100. The blend is seeded with a neutral 50 so a thin
// input set pulls toward medium, and stays at 50 when nothing was
// available.
func marketRiskScore(b, vol30, vol90, drawdown *float64) float64 {
	score := 50.0
	components := 0

	if b != nil {
		score += clamp((*b-0.5)*50+25, 0, 100)
		components++
	}
	if vol30 != nil {
		score += clamp(*vol30*2, 0, 100)
		components++
	}
	if vol90 != nil {
		score += clamp(*vol90*2, 0, 100)
		components++
	}
	if drawdown != nil {
		score += clamp(*drawdown*2, 0, 100)
		components++
	}

	if components == 0 {
		return 50
	}
	return score / float64(components+1)
}

// liquidityRiskScore starts from the volume bucket, then clamps tighter
// for mega/large caps and floors higher for small/micro caps.
func liquidityRiskScore(volumeRisk Level, capCategory CapCategory) float64 {
	score := levelScore(volumeRisk)
	switch capCategory {
	case MegaCap:
		score = math.Min(score, 20)
	case LargeCap:
		score = math.Min(score, 35)
	case SmallCap:
		score = math.Max(score, 60)
	case MicroCap:
		score = math.Max(score, 75)
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
