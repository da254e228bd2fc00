package risk

import "time"

// Level is a categorical risk bucket.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// CapCategory buckets a company by market capitalization.
type CapCategory string

const (
	MegaCap  CapCategory = "mega"
	LargeCap CapCategory = "large"
	MidCap   CapCategory = "mid"
	SmallCap CapCategory = "small"
	MicroCap CapCategory = "micro"
)

// Profile is the composite risk assessment for a symbol. RiskLevel is a
// pure function of OverallRiskScore and is never stored inconsistently
// with it.
type Profile struct {
	Symbol           string          `json:"symbol"`
	OverallRiskScore int             `json:"overallRiskScore"`
	RiskLevel        Level           `json:"riskLevel"`
	MarketRisk       MarketRisk      `json:"marketRisk"`
	FundamentalRisk  FundamentalRisk `json:"fundamentalRisk"`
	LiquidityRisk    LiquidityRisk   `json:"liquidityRisk"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// MarketRisk holds the price-derived components. Each is nil when the
// series was too short to estimate it.
type MarketRisk struct {
	Beta          *float64 `json:"beta"`
	Volatility30D *float64 `json:"volatility30D"`
	Volatility90D *float64 `json:"volatility90D"`
	MaxDrawdown1Y *float64 `json:"maxDrawdown1Y"`
}

// FundamentalRisk holds the leverage-derived components.
type FundamentalRisk struct {
	DebtRisk             Level `json:"debtRisk"`
	InterestCoverageRisk Level `json:"interestCoverageRisk"`
}

// LiquidityRisk holds the volume and size components.
type LiquidityRisk struct {
	AvgDailyVolume    *float64    `json:"avgDailyVolume"`
	VolumeRisk        Level       `json:"volumeRisk"`
	MarketCapCategory CapCategory `json:"marketCapCategory"`
}
