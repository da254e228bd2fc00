package fundamentals

import "time"

// Metrics is the canonical full fundamentals record for a symbol. Every
// field is independently nullable: nil means the metric is unknown, never
// zero. The free tier sees a fixed subset of this record; there is no
// separate free shape.
type Metrics struct {
	Symbol        string        `json:"symbol"`
	Valuation     Valuation     `json:"valuation"`
	Profitability Profitability `json:"profitability"`
	Growth        Growth        `json:"growth"`
	Income        Income        `json:"incomeStatement"`
	BalanceSheet  BalanceSheet  `json:"balanceSheet"`
	CashFlow      CashFlow      `json:"cashFlow"`
	Leverage      Leverage      `json:"leverage"`
	Efficiency    Efficiency    `json:"efficiency"`
	PerShare      PerShare      `json:"perShare"`
	FiscalYear    int           `json:"fiscalYear"`
	FiscalQuarter int           `json:"fiscalQuarter"`
	LastUpdated   time.Time     `json:"lastUpdated"`
}

type Valuation struct {
	PERatio         *float64 `json:"peRatio"`
	ForwardPE       *float64 `json:"forwardPE"`
	PEGRatio        *float64 `json:"pegRatio"`
	PBRatio         *float64 `json:"pbRatio"`
	PSRatio         *float64 `json:"psRatio"`
	EVToEBITDA      *float64 `json:"evToEbitda"`
	EVToRevenue     *float64 `json:"evToRevenue"`
	EVToFCF         *float64 `json:"evToFcf"`
	PriceToFCF      *float64 `json:"priceToFcf"`
	EnterpriseValue *float64 `json:"enterpriseValue"`
}

type Profitability struct {
	GrossMargin     *float64 `json:"grossMargin"`
	OperatingMargin *float64 `json:"operatingMargin"`
	EBITDAMargin    *float64 `json:"ebitdaMargin"`
	NetMargin       *float64 `json:"netMargin"`
	ROE             *float64 `json:"roe"`
	ROA             *float64 `json:"roa"`
	ROIC            *float64 `json:"roic"`
	ROCE            *float64 `json:"roce"`
}

type Growth struct {
	RevenueGrowthYoY *float64 `json:"revenueGrowthYoy"`
	RevenueGrowth3Y  *float64 `json:"revenueGrowth3Y"`
	RevenueGrowth5Y  *float64 `json:"revenueGrowth5Y"`
	RevenueGrowthQoQ *float64 `json:"revenueGrowthQoQ"`
	EPSGrowthYoY     *float64 `json:"epsGrowthYoy"`
	EPSGrowth3Y      *float64 `json:"epsGrowth3Y"`
	EPSGrowth5Y      *float64 `json:"epsGrowth5Y"`
	EPSGrowthQoQ     *float64 `json:"epsGrowthQoQ"`
	FCFGrowthYoY     *float64 `json:"fcfGrowthYoy"`
	FCFGrowth3Y      *float64 `json:"fcfGrowth3Y"`
}

type Income struct {
	Revenue                *float64 `json:"revenue"`
	CostOfRevenue          *float64 `json:"costOfRevenue"`
	GrossProfit            *float64 `json:"grossProfit"`
	OperatingExpenses      *float64 `json:"operatingExpenses"`
	ResearchAndDevelopment *float64 `json:"researchAndDevelopment"`
	SellingGeneralAdmin    *float64 `json:"sellingGeneralAdmin"`
	OperatingIncome        *float64 `json:"operatingIncome"`
	EBITDA                 *float64 `json:"ebitda"`
	InterestExpense        *float64 `json:"interestExpense"`
	TaxExpense             *float64 `json:"taxExpense"`
	NetIncome              *float64 `json:"netIncome"`
	EPS                    *float64 `json:"eps"`
	EPSDiluted             *float64 `json:"epsDiluted"`
}

type BalanceSheet struct {
	TotalAssets            *float64 `json:"totalAssets"`
	TotalLiabilities       *float64 `json:"totalLiabilities"`
	TotalEquity            *float64 `json:"totalEquity"`
	Cash                   *float64 `json:"cash"`
	ShortTermInvestments   *float64 `json:"shortTermInvestments"`
	CashAndEquivalents     *float64 `json:"cashAndEquivalents"`
	AccountsReceivable     *float64 `json:"accountsReceivable"`
	Inventory              *float64 `json:"inventory"`
	CurrentAssets          *float64 `json:"currentAssets"`
	PropertyPlantEquipment *float64 `json:"propertyPlantEquipment"`
	Goodwill               *float64 `json:"goodwill"`
	IntangibleAssets       *float64 `json:"intangibleAssets"`
	AccountsPayable        *float64 `json:"accountsPayable"`
	ShortTermDebt          *float64 `json:"shortTermDebt"`
	CurrentLiabilities     *float64 `json:"currentLiabilities"`
	LongTermDebt           *float64 `json:"longTermDebt"`
	TotalDebt              *float64 `json:"totalDebt"`
	NetDebt                *float64 `json:"netDebt"`
	RetainedEarnings       *float64 `json:"retainedEarnings"`
}

type CashFlow struct {
	OperatingCashFlow   *float64 `json:"operatingCashFlow"`
	CapitalExpenditures *float64 `json:"capitalExpenditures"`
	FreeCashFlow        *float64 `json:"freeCashFlow"`
	DividendsPaid       *float64 `json:"dividendsPaid"`
	ShareRepurchases    *float64 `json:"shareRepurchases"`
	Acquisitions        *float64 `json:"acquisitions"`
	InvestingCashFlow   *float64 `json:"investingCashFlow"`
	FinancingCashFlow   *float64 `json:"financingCashFlow"`
	NetChangeInCash     *float64 `json:"netChangeInCash"`
}

type Leverage struct {
	DebtToEquity     *float64 `json:"debtToEquity"`
	DebtToAssets     *float64 `json:"debtToAssets"`
	DebtToEBITDA     *float64 `json:"debtToEbitda"`
	NetDebtToEBITDA  *float64 `json:"netDebtToEbitda"`
	InterestCoverage *float64 `json:"interestCoverage"`
	CurrentRatio     *float64 `json:"currentRatio"`
	QuickRatio       *float64 `json:"quickRatio"`
	CashRatio        *float64 `json:"cashRatio"`
}

type Efficiency struct {
	AssetTurnover       *float64 `json:"assetTurnover"`
	InventoryTurnover   *float64 `json:"inventoryTurnover"`
	ReceivablesTurnover *float64 `json:"receivablesTurnover"`
	PayablesTurnover    *float64 `json:"payablesTurnover"`
	DaysInventory       *float64 `json:"daysInventory"`
	DaysReceivables     *float64 `json:"daysReceivables"`
	DaysPayables        *float64 `json:"daysPayables"`
	CashConversionCycle *float64 `json:"cashConversionCycle"`
}

type PerShare struct {
	BookValue         *float64 `json:"bookValue"`
	TangibleBookValue *float64 `json:"tangibleBookValue"`
	RevenuePerShare   *float64 `json:"revenuePerShare"`
	FCFPerShare       *float64 `json:"fcfPerShare"`
	Dividend          *float64 `json:"dividend"`
	DividendYield     *float64 `json:"dividendYield"`
	PayoutRatio       *float64 `json:"payoutRatio"`
}
