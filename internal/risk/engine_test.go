package risk

import (
	"context"
	"testing"
	"time"

	"github.com/finview/finview/internal/fundamentals"
	"github.com/finview/finview/internal/market"
)

// memStore is a map-backed cache for tests. TTLs are ignored.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	s.data[key] = value
}

func (s *memStore) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(s.data, k)
	}
}

// fakeCharts serves canned price history per symbol and counts calls.
type fakeCharts struct {
	points map[string][]market.PricePoint
	calls  int
}

func (f *fakeCharts) GetChartData(_ context.Context, symbol string, _ market.Range) []market.PricePoint {
	f.calls++
	return f.points[symbol]
}

func fptr(v float64) *float64 { return &v }

func pricePoints(closes ...float64) []market.PricePoint {
	out := make([]market.PricePoint, 0, len(closes))
	for i, c := range closes {
		out = append(out, market.PricePoint{
			Timestamp: int64(i) * 86_400_000,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		})
	}
	return out
}

func TestCalculateRiskMetricsFundamentalComponents(t *testing.T) {
	engine := NewEngine(newMemStore(), &fakeCharts{})

	funds := &fundamentals.Metrics{Symbol: "ACME"}
	funds.Leverage.DebtToEquity = fptr(0.3)
	funds.Leverage.InterestCoverage = fptr(1.5)

	profile := engine.CalculateRiskMetrics(context.Background(), "ACME", nil, funds, nil, nil)
	if profile == nil {
		t.Fatal("expected a profile")
	}

	if profile.FundamentalRisk.DebtRisk != Low {
		t.Errorf("expected low debt risk for 0.3, got %s", profile.FundamentalRisk.DebtRisk)
	}
	if profile.FundamentalRisk.InterestCoverageRisk != High {
		t.Errorf("expected high coverage risk for 1.5, got %s", profile.FundamentalRisk.InterestCoverageRisk)
	}

	// Low debt (20) averaged with high coverage (80) lands on 50. With no
	// price data and no liquidity inputs the other components also sit at
	// 50, so the composite is exactly 50.
	if profile.OverallRiskScore != 50 {
		t.Errorf("expected overall 50, got %d", profile.OverallRiskScore)
	}
	if profile.RiskLevel != Medium {
		t.Errorf("expected medium level, got %s", profile.RiskLevel)
	}
}

func TestCalculateRiskMetricsMegaCapLiquidity(t *testing.T) {
	engine := NewEngine(newMemStore(), &fakeCharts{})

	profile := engine.CalculateRiskMetrics(context.Background(), "BIG", nil, nil,
		fptr(500_000_000_000), fptr(2_000_000))

	if profile.LiquidityRisk.VolumeRisk != Low {
		t.Errorf("expected low volume risk for 2M shares, got %s", profile.LiquidityRisk.VolumeRisk)
	}
	if profile.LiquidityRisk.MarketCapCategory != MegaCap {
		t.Errorf("expected mega cap, got %s", profile.LiquidityRisk.MarketCapCategory)
	}

	// Market and fundamental components default to 50; the mega-cap
	// liquidity score is capped at 20, so 0.4*50 + 0.3*50 + 0.3*20 = 41.
	if profile.OverallRiskScore != 41 {
		t.Errorf("expected overall 41, got %d", profile.OverallRiskScore)
	}
}

func TestCalculateRiskMetricsMicroCapFloor(t *testing.T) {
	engine := NewEngine(newMemStore(), &fakeCharts{})

	profile := engine.CalculateRiskMetrics(context.Background(), "TINY", nil, nil,
		fptr(100_000_000), fptr(2_000_000))

	if profile.LiquidityRisk.MarketCapCategory != MicroCap {
		t.Fatalf("expected micro cap, got %s", profile.LiquidityRisk.MarketCapCategory)
	}
	// Heavy volume alone scores 20, but micro caps floor at 75:
	// 0.4*50 + 0.3*50 + 0.3*75 = 57.5, rounded to 58.
	if profile.OverallRiskScore != 58 {
		t.Errorf("expected overall 58, got %d", profile.OverallRiskScore)
	}
}

func TestCalculateRiskMetricsObservationGates(t *testing.T) {
	// 21 closes give 20 daily returns: enough for the 30-day volatility,
	// not enough for the 90-day one or beta.
	closes := make([]float64, 21)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	history := pricePoints(closes...)

	engine := NewEngine(newMemStore(), &fakeCharts{})
	profile := engine.CalculateRiskMetrics(context.Background(), "GATE", history, nil, nil, nil)

	if profile.MarketRisk.Volatility30D == nil {
		t.Error("expected 30-day volatility with 20 observations")
	}
	if profile.MarketRisk.Volatility90D != nil {
		t.Error("expected nil 90-day volatility below 60 observations")
	}
	if profile.MarketRisk.Beta != nil {
		t.Error("expected nil beta without benchmark history")
	}
	if profile.MarketRisk.MaxDrawdown1Y == nil {
		t.Error("expected drawdown whenever prices exist")
	}
}

func TestCalculateRiskMetricsFetchesHistoryWhenAbsent(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	charts := &fakeCharts{points: map[string][]market.PricePoint{
		"GRWN":          pricePoints(closes...),
		BenchmarkSymbol: pricePoints(closes...),
	}}

	engine := NewEngine(newMemStore(), charts)
	profile := engine.CalculateRiskMetrics(context.Background(), "grwn", nil, nil, nil, nil)

	if profile.Symbol != "GRWN" {
		t.Errorf("expected normalized symbol GRWN, got %s", profile.Symbol)
	}
	if charts.calls != 2 {
		t.Errorf("expected one stock and one benchmark fetch, got %d calls", charts.calls)
	}
	if profile.MarketRisk.Beta == nil {
		t.Error("expected beta with 119 aligned observations")
	}
	if profile.MarketRisk.Volatility90D == nil {
		t.Error("expected 90-day volatility with 119 observations")
	}
}

func TestCalculateRiskMetricsCachesProfile(t *testing.T) {
	charts := &fakeCharts{}
	engine := NewEngine(newMemStore(), charts)
	ctx := context.Background()

	first := engine.CalculateRiskMetrics(ctx, "MEMO", nil, nil, fptr(500_000_000_000), fptr(2_000_000))
	callsAfterFirst := charts.calls

	second := engine.CalculateRiskMetrics(ctx, "MEMO", nil, nil, nil, nil)
	if charts.calls != callsAfterFirst {
		t.Errorf("expected cached profile to skip chart fetches, got %d extra calls", charts.calls-callsAfterFirst)
	}
	if second.OverallRiskScore != first.OverallRiskScore {
		t.Errorf("cached score %d differs from computed %d", second.OverallRiskScore, first.OverallRiskScore)
	}
	if second.RiskLevel != first.RiskLevel {
		t.Errorf("cached level %s differs from computed %s", second.RiskLevel, first.RiskLevel)
	}
}

func TestScoreLevelBands(t *testing.T) {
	tests := []struct {
		score    int
		expected Level
	}{
		{0, Low},
		{33, Low},
		{34, Medium},
		{66, Medium},
		{67, High},
		{100, High},
	}

	for _, tt := range tests {
		if got := scoreLevel(tt.score); got != tt.expected {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.expected, got)
		}
	}
}

func TestMarketRiskScoreWithoutInputs(t *testing.T) {
	if got := marketRiskScore(nil, nil, nil, nil); got != 50 {
		t.Errorf("expected neutral 50 with no inputs, got %v", got)
	}
}
