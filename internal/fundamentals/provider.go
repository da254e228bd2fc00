package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// StatementsProvider fetches raw financial-statement payloads. Each call
// returns the latest reporting period, or nil when the provider has no data
// for the symbol.
type StatementsProvider interface {
	RatiosTTM(ctx context.Context, symbol string) (*RatiosTTM, error)
	KeyMetrics(ctx context.Context, symbol string) (*KeyMetrics, error)
	IncomeStatement(ctx context.Context, symbol string) (*IncomeStatement, error)
	BalanceSheet(ctx context.Context, symbol string) (*BalanceSheetStatement, error)
	CashFlowStatement(ctx context.Context, symbol string) (*CashFlowStatement, error)
	FinancialGrowth(ctx context.Context, symbol string) (*FinancialGrowth, error)
}

// RatiosTTM is the trailing-twelve-month ratios payload. Ratio-endpoint
// values take precedence over key-metrics values for the same metric.
type RatiosTTM struct {
	PERatioTTM                   *float64 `json:"peRatioTTM"`
	PEGRatioTTM                  *float64 `json:"pegRatioTTM"`
	PriceToBookRatioTTM          *float64 `json:"priceToBookRatioTTM"`
	PriceToSalesRatioTTM         *float64 `json:"priceToSalesRatioTTM"`
	EnterpriseValueOverEBITDATTM *float64 `json:"enterpriseValueMultipleTTM"`
	EVOverRevenueTTM             *float64 `json:"enterpriseValueOverRevenueTTM"`
	PriceToFreeCashFlowsRatioTTM *float64 `json:"priceToFreeCashFlowsRatioTTM"`
	DividendYieldTTM             *float64 `json:"dividendYielTTM"`
	PayoutRatioTTM               *float64 `json:"payoutRatioTTM"`
	GrossProfitMarginTTM         *float64 `json:"grossProfitMarginTTM"`
	OperatingProfitMarginTTM     *float64 `json:"operatingProfitMarginTTM"`
	NetProfitMarginTTM           *float64 `json:"netProfitMarginTTM"`
	ReturnOnAssetsTTM            *float64 `json:"returnOnAssetsTTM"`
	ReturnOnEquityTTM            *float64 `json:"returnOnEquityTTM"`
	ReturnOnCapitalEmployedTTM   *float64 `json:"returnOnCapitalEmployedTTM"`
	DebtRatioTTM                 *float64 `json:"debtRatioTTM"`
	DebtEquityRatioTTM           *float64 `json:"debtEquityRatioTTM"`
	CurrentRatioTTM              *float64 `json:"currentRatioTTM"`
	QuickRatioTTM                *float64 `json:"quickRatioTTM"`
	CashRatioTTM                 *float64 `json:"cashRatioTTM"`
	InterestCoverageTTM          *float64 `json:"interestCoverageTTM"`
	AssetTurnoverTTM             *float64 `json:"assetTurnoverTTM"`
	InventoryTurnoverTTM         *float64 `json:"inventoryTurnoverTTM"`
	ReceivablesTurnoverTTM       *float64 `json:"receivablesTurnoverTTM"`
	PayablesTurnoverTTM          *float64 `json:"payablesTurnoverTTM"`
	DaysOfInventoryTTM           *float64 `json:"daysOfInventoryOutstandingTTM"`
	DaysOfSalesOutstandingTTM    *float64 `json:"daysOfSalesOutstandingTTM"`
	DaysOfPayablesTTM            *float64 `json:"daysOfPayablesOutstandingTTM"`
	CashConversionCycleTTM       *float64 `json:"cashConversionCycleTTM"`
	FreeCashFlowPerShareTTM      *float64 `json:"freeCashFlowPerShareTTM"`
	BookValuePerShareTTM         *float64 `json:"bookValuePerShareTTM"`
	TangibleBVPerShareTTM        *float64 `json:"tangibleBookValuePerShareTTM"`
	RevenuePerShareTTM           *float64 `json:"revenuePerShareTTM"`
}

// KeyMetrics is the key-metrics payload, the fallback source for most
// ratios.
type KeyMetrics struct {
	PERatio             *float64 `json:"peRatio"`
	PBRatio             *float64 `json:"pbRatio"`
	PriceToSalesRatio   *float64 `json:"priceToSalesRatio"`
	EVOverEBITDA        *float64 `json:"enterpriseValueOverEBITDA"`
	EVToSales           *float64 `json:"evToSales"`
	EVToFreeCashFlow    *float64 `json:"evToFreeCashFlow"`
	PFCFRatio           *float64 `json:"pfcfRatio"`
	EnterpriseValue     *float64 `json:"enterpriseValue"`
	ROE                 *float64 `json:"roe"`
	ROIC                *float64 `json:"roic"`
	DebtToEquity        *float64 `json:"debtToEquity"`
	DebtToAssets        *float64 `json:"debtToAssets"`
	NetDebtToEBITDA     *float64 `json:"netDebtToEBITDA"`
	CurrentRatio        *float64 `json:"currentRatio"`
	InterestCoverage    *float64 `json:"interestCoverage"`
	DividendYield       *float64 `json:"dividendYield"`
	PayoutRatio         *float64 `json:"payoutRatio"`
	InventoryTurnover   *float64 `json:"inventoryTurnover"`
	ReceivablesTurnover *float64 `json:"receivablesTurnover"`
	PayablesTurnover    *float64 `json:"payablesTurnover"`
	DaysOfInventory     *float64 `json:"daysOfInventoryOnHand"`
	DaysSalesOut        *float64 `json:"daysSalesOutstanding"`
	DaysPayablesOut     *float64 `json:"daysPayablesOutstanding"`
	BookValuePerShare   *float64 `json:"bookValuePerShare"`
	TangibleBVPerShare  *float64 `json:"tangibleBookValuePerShare"`
	RevenuePerShare     *float64 `json:"revenuePerShare"`
	FreeCashFlowPerShr  *float64 `json:"freeCashFlowPerShare"`
}

// IncomeStatement is the latest income-statement payload.
type IncomeStatement struct {
	CalendarYear         string   `json:"calendarYear"`
	Period               string   `json:"period"`
	Revenue              *float64 `json:"revenue"`
	CostOfRevenue        *float64 `json:"costOfRevenue"`
	GrossProfit          *float64 `json:"grossProfit"`
	GrossProfitRatio     *float64 `json:"grossProfitRatio"`
	RnDExpenses          *float64 `json:"researchAndDevelopmentExpenses"`
	SGAExpenses          *float64 `json:"sellingGeneralAndAdministrativeExpenses"`
	OperatingExpenses    *float64 `json:"operatingExpenses"`
	InterestExpense      *float64 `json:"interestExpense"`
	EBITDA               *float64 `json:"ebitda"`
	EBITDARatio          *float64 `json:"ebitdaratio"`
	OperatingIncome      *float64 `json:"operatingIncome"`
	OperatingIncomeRatio *float64 `json:"operatingIncomeRatio"`
	IncomeTaxExpense     *float64 `json:"incomeTaxExpense"`
	NetIncome            *float64 `json:"netIncome"`
	NetIncomeRatio       *float64 `json:"netIncomeRatio"`
	EPS                  *float64 `json:"eps"`
	EPSDiluted           *float64 `json:"epsdiluted"`
}

// BalanceSheetStatement is the latest balance-sheet payload.
type BalanceSheetStatement struct {
	CashAndCashEquivalents  *float64 `json:"cashAndCashEquivalents"`
	ShortTermInvestments    *float64 `json:"shortTermInvestments"`
	CashAndShortTermInv     *float64 `json:"cashAndShortTermInvestments"`
	NetReceivables          *float64 `json:"netReceivables"`
	Inventory               *float64 `json:"inventory"`
	TotalCurrentAssets      *float64 `json:"totalCurrentAssets"`
	PropertyPlantEquipNet   *float64 `json:"propertyPlantEquipmentNet"`
	Goodwill                *float64 `json:"goodwill"`
	IntangibleAssets        *float64 `json:"intangibleAssets"`
	TotalAssets             *float64 `json:"totalAssets"`
	AccountPayables         *float64 `json:"accountPayables"`
	ShortTermDebt           *float64 `json:"shortTermDebt"`
	TotalCurrentLiabilities *float64 `json:"totalCurrentLiabilities"`
	LongTermDebt            *float64 `json:"longTermDebt"`
	TotalLiabilities        *float64 `json:"totalLiabilities"`
	RetainedEarnings        *float64 `json:"retainedEarnings"`
	TotalStockholdersEquity *float64 `json:"totalStockholdersEquity"`
	TotalEquity             *float64 `json:"totalEquity"`
	TotalDebt               *float64 `json:"totalDebt"`
	NetDebt                 *float64 `json:"netDebt"`
}

// CashFlowStatement is the latest cash-flow payload (pro tier only).
type CashFlowStatement struct {
	NetCashFromOperations  *float64 `json:"netCashProvidedByOperatingActivities"`
	OperatingCashFlow      *float64 `json:"operatingCashFlow"`
	InvestmentsInPPE       *float64 `json:"investmentsInPropertyPlantAndEquipment"`
	CapitalExpenditure     *float64 `json:"capitalExpenditure"`
	FreeCashFlow           *float64 `json:"freeCashFlow"`
	DividendsPaid          *float64 `json:"dividendsPaid"`
	CommonStockRepurchased *float64 `json:"commonStockRepurchased"`
	AcquisitionsNet        *float64 `json:"acquisitionsNet"`
	NetCashFromInvesting   *float64 `json:"netCashUsedForInvestingActivites"`
	NetCashFromFinancing   *float64 `json:"netCashUsedProvidedByFinancingActivities"`
	NetChangeInCash        *float64 `json:"netChangeInCash"`
}

// FinancialGrowth is the growth payload (pro tier only). The 3Y/5Y fields
// are per-share series the provider precomputes; when absent they stay
// null, no multi-period fetch is attempted.
type FinancialGrowth struct {
	RevenueGrowth           *float64 `json:"revenueGrowth"`
	EPSGrowth               *float64 `json:"epsgrowth"`
	FreeCashFlowGrowth      *float64 `json:"freeCashFlowGrowth"`
	ThreeYRevenueGrowth     *float64 `json:"threeYRevenueGrowthPerShare"`
	FiveYRevenueGrowth      *float64 `json:"fiveYRevenueGrowthPerShare"`
	ThreeYNetIncomeGrowth   *float64 `json:"threeYNetIncomeGrowthPerShare"`
	FiveYNetIncomeGrowth    *float64 `json:"fiveYNetIncomeGrowthPerShare"`
	ThreeYOperatingCFGrowth *float64 `json:"threeYOperatingCFGrowthPerShare"`
}

// FMPClient talks to a Financial Modeling Prep compatible statements API.
type FMPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFMPClient creates a statements client. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewFMPClient(baseURL, apiKey string) *FMPClient {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com/api/v3"
	}
	return &FMPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *FMPClient) RatiosTTM(ctx context.Context, symbol string) (*RatiosTTM, error) {
	return fetchFirst[RatiosTTM](ctx, c, "/ratios-ttm/"+url.PathEscape(symbol))
}

func (c *FMPClient) KeyMetrics(ctx context.Context, symbol string) (*KeyMetrics, error) {
	return fetchFirst[KeyMetrics](ctx, c, "/key-metrics/"+url.PathEscape(symbol))
}

func (c *FMPClient) IncomeStatement(ctx context.Context, symbol string) (*IncomeStatement, error) {
	return fetchFirst[IncomeStatement](ctx, c, "/income-statement/"+url.PathEscape(symbol))
}

func (c *FMPClient) BalanceSheet(ctx context.Context, symbol string) (*BalanceSheetStatement, error) {
	return fetchFirst[BalanceSheetStatement](ctx, c, "/balance-sheet-statement/"+url.PathEscape(symbol))
}

func (c *FMPClient) CashFlowStatement(ctx context.Context, symbol string) (*CashFlowStatement, error) {
	return fetchFirst[CashFlowStatement](ctx, c, "/cash-flow-statement/"+url.PathEscape(symbol))
}

func (c *FMPClient) FinancialGrowth(ctx context.Context, symbol string) (*FinancialGrowth, error) {
	return fetchFirst[FinancialGrowth](ctx, c, "/financial-growth/"+url.PathEscape(symbol))
}

// fetchFirst gets an endpoint that returns an array of reporting periods
// and keeps the most recent one.
func fetchFirst[T any](ctx context.Context, c *FMPClient, path string) (*T, error) {
	u := fmt.Sprintf("%s%s?limit=1&apikey=%s", c.baseURL, path, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statements request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("statements API returned status %d", resp.StatusCode)
	}

	var rows []T
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("statements payload decode failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
