package fundamentals

import (
	"strconv"
	"time"
)

// statementSet bundles whatever the provider returned for one symbol. Any
// member may be nil.
type statementSet struct {
	ratios     *RatiosTTM
	keyMetrics *KeyMetrics
	income     *IncomeStatement
	balance    *BalanceSheetStatement
	cashFlow   *CashFlowStatement
	growth     *FinancialGrowth
}

func (s statementSet) empty() bool {
	return s.ratios == nil && s.keyMetrics == nil && s.income == nil &&
		s.balance == nil && s.cashFlow == nil && s.growth == nil
}

// coalesce returns the first non-nil value. Mapping precedence is written
// as an explicit ordered argument list: the more specific ratios-TTM value
// first, the key-metrics value as fallback.
func coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// buildMetrics maps raw statements into the canonical full record. Metrics
// the fetched endpoints cannot supply (forward P/E, QoQ growth, dividend
// per share) stay null rather than zero.
func buildMetrics(symbol string, src statementSet, now time.Time) *Metrics {
	r := src.ratios
	k := src.keyMetrics
	inc := src.income
	bal := src.balance
	cf := src.cashFlow
	gr := src.growth

	m := &Metrics{
		Symbol:      symbol,
		LastUpdated: now,
	}
	m.FiscalYear, m.FiscalQuarter = fiscalPeriod(inc, now)

	if r == nil {
		r = &RatiosTTM{}
	}
	if k == nil {
		k = &KeyMetrics{}
	}
	if inc == nil {
		inc = &IncomeStatement{}
	}
	if bal == nil {
		bal = &BalanceSheetStatement{}
	}
	if cf == nil {
		cf = &CashFlowStatement{}
	}
	if gr == nil {
		gr = &FinancialGrowth{}
	}

	m.Valuation = Valuation{
		PERatio:         coalesce(r.PERatioTTM, k.PERatio),
		ForwardPE:       nil,
		PEGRatio:        r.PEGRatioTTM,
		PBRatio:         coalesce(r.PriceToBookRatioTTM, k.PBRatio),
		PSRatio:         coalesce(r.PriceToSalesRatioTTM, k.PriceToSalesRatio),
		EVToEBITDA:      coalesce(r.EnterpriseValueOverEBITDATTM, k.EVOverEBITDA),
		EVToRevenue:     coalesce(r.EVOverRevenueTTM, k.EVToSales),
		EVToFCF:         k.EVToFreeCashFlow,
		PriceToFCF:      coalesce(r.PriceToFreeCashFlowsRatioTTM, k.PFCFRatio),
		EnterpriseValue: k.EnterpriseValue,
	}

	m.Profitability = Profitability{
		GrossMargin:     coalesce(r.GrossProfitMarginTTM, inc.GrossProfitRatio),
		OperatingMargin: coalesce(r.OperatingProfitMarginTTM, inc.OperatingIncomeRatio),
		EBITDAMargin:    inc.EBITDARatio,
		NetMargin:       coalesce(r.NetProfitMarginTTM, inc.NetIncomeRatio),
		ROE:             coalesce(r.ReturnOnEquityTTM, k.ROE),
		ROA:             r.ReturnOnAssetsTTM,
		ROIC:            k.ROIC,
		ROCE:            r.ReturnOnCapitalEmployedTTM,
	}

	m.Growth = Growth{
		RevenueGrowthYoY: gr.RevenueGrowth,
		RevenueGrowth3Y:  gr.ThreeYRevenueGrowth,
		RevenueGrowth5Y:  gr.FiveYRevenueGrowth,
		RevenueGrowthQoQ: nil,
		EPSGrowthYoY:     gr.EPSGrowth,
		EPSGrowth3Y:      gr.ThreeYNetIncomeGrowth,
		EPSGrowth5Y:      gr.FiveYNetIncomeGrowth,
		EPSGrowthQoQ:     nil,
		FCFGrowthYoY:     gr.FreeCashFlowGrowth,
		FCFGrowth3Y:      gr.ThreeYOperatingCFGrowth,
	}

	m.Income = Income{
		Revenue:                inc.Revenue,
		CostOfRevenue:          inc.CostOfRevenue,
		GrossProfit:            inc.GrossProfit,
		OperatingExpenses:      inc.OperatingExpenses,
		ResearchAndDevelopment: inc.RnDExpenses,
		SellingGeneralAdmin:    inc.SGAExpenses,
		OperatingIncome:        inc.OperatingIncome,
		EBITDA:                 inc.EBITDA,
		InterestExpense:        inc.InterestExpense,
		TaxExpense:             inc.IncomeTaxExpense,
		NetIncome:              inc.NetIncome,
		EPS:                    inc.EPS,
		EPSDiluted:             inc.EPSDiluted,
	}

	m.BalanceSheet = BalanceSheet{
		TotalAssets:            bal.TotalAssets,
		TotalLiabilities:       bal.TotalLiabilities,
		TotalEquity:            coalesce(bal.TotalEquity, bal.TotalStockholdersEquity),
		Cash:                   bal.CashAndCashEquivalents,
		ShortTermInvestments:   bal.ShortTermInvestments,
		CashAndEquivalents:     bal.CashAndShortTermInv,
		AccountsReceivable:     bal.NetReceivables,
		Inventory:              bal.Inventory,
		CurrentAssets:          bal.TotalCurrentAssets,
		PropertyPlantEquipment: bal.PropertyPlantEquipNet,
		Goodwill:               bal.Goodwill,
		IntangibleAssets:       bal.IntangibleAssets,
		AccountsPayable:        bal.AccountPayables,
		ShortTermDebt:          bal.ShortTermDebt,
		CurrentLiabilities:     bal.TotalCurrentLiabilities,
		LongTermDebt:           bal.LongTermDebt,
		TotalDebt:              bal.TotalDebt,
		NetDebt:                bal.NetDebt,
		RetainedEarnings:       bal.RetainedEarnings,
	}

	m.CashFlow = CashFlow{
		OperatingCashFlow:   coalesce(cf.OperatingCashFlow, cf.NetCashFromOperations),
		CapitalExpenditures: coalesce(cf.CapitalExpenditure, cf.InvestmentsInPPE),
		FreeCashFlow:        cf.FreeCashFlow,
		DividendsPaid:       cf.DividendsPaid,
		ShareRepurchases:    cf.CommonStockRepurchased,
		Acquisitions:        cf.AcquisitionsNet,
		InvestingCashFlow:   cf.NetCashFromInvesting,
		FinancingCashFlow:   cf.NetCashFromFinancing,
		NetChangeInCash:     cf.NetChangeInCash,
	}

	m.Leverage = Leverage{
		DebtToEquity:     coalesce(r.DebtEquityRatioTTM, k.DebtToEquity),
		DebtToAssets:     coalesce(r.DebtRatioTTM, k.DebtToAssets),
		DebtToEBITDA:     nil,
		NetDebtToEBITDA:  k.NetDebtToEBITDA,
		InterestCoverage: coalesce(r.InterestCoverageTTM, k.InterestCoverage),
		CurrentRatio:     coalesce(r.CurrentRatioTTM, k.CurrentRatio),
		QuickRatio:       r.QuickRatioTTM,
		CashRatio:        r.CashRatioTTM,
	}

	m.Efficiency = Efficiency{
		AssetTurnover:       r.AssetTurnoverTTM,
		InventoryTurnover:   coalesce(r.InventoryTurnoverTTM, k.InventoryTurnover),
		ReceivablesTurnover: coalesce(r.ReceivablesTurnoverTTM, k.ReceivablesTurnover),
		PayablesTurnover:    coalesce(r.PayablesTurnoverTTM, k.PayablesTurnover),
		DaysInventory:       coalesce(r.DaysOfInventoryTTM, k.DaysOfInventory),
		DaysReceivables:     coalesce(r.DaysOfSalesOutstandingTTM, k.DaysSalesOut),
		DaysPayables:        coalesce(r.DaysOfPayablesTTM, k.DaysPayablesOut),
		CashConversionCycle: r.CashConversionCycleTTM,
	}

	m.PerShare = PerShare{
		BookValue:         coalesce(r.BookValuePerShareTTM, k.BookValuePerShare),
		TangibleBookValue: coalesce(r.TangibleBVPerShareTTM, k.TangibleBVPerShare),
		RevenuePerShare:   coalesce(r.RevenuePerShareTTM, k.RevenuePerShare),
		FCFPerShare:       coalesce(r.FreeCashFlowPerShareTTM, k.FreeCashFlowPerShr),
		Dividend:          nil,
		DividendYield:     coalesce(k.DividendYield, r.DividendYieldTTM),
		PayoutRatio:       coalesce(k.PayoutRatio, r.PayoutRatioTTM),
	}

	return m
}

// applyFreeMask filters the canonical record down to the free-tier surface.
// The free view is always a strict subset of pro: fields are kept or
// cleared, never remapped, so a value visible in free is identical in pro.
func applyFreeMask(m *Metrics) *Metrics {
	out := &Metrics{
		Symbol:        m.Symbol,
		FiscalYear:    m.FiscalYear,
		FiscalQuarter: m.FiscalQuarter,
		LastUpdated:   m.LastUpdated,
	}

	out.Valuation.PERatio = m.Valuation.PERatio
	out.Valuation.PBRatio = m.Valuation.PBRatio
	out.Valuation.PSRatio = m.Valuation.PSRatio
	out.Valuation.EVToEBITDA = m.Valuation.EVToEBITDA
	out.Valuation.EnterpriseValue = m.Valuation.EnterpriseValue

	out.Profitability.GrossMargin = m.Profitability.GrossMargin
	out.Profitability.OperatingMargin = m.Profitability.OperatingMargin
	out.Profitability.NetMargin = m.Profitability.NetMargin
	out.Profitability.ROE = m.Profitability.ROE
	out.Profitability.ROA = m.Profitability.ROA

	out.Growth.RevenueGrowthYoY = m.Growth.RevenueGrowthYoY
	out.Growth.EPSGrowthYoY = m.Growth.EPSGrowthYoY

	out.Income.Revenue = m.Income.Revenue
	out.Income.NetIncome = m.Income.NetIncome
	out.Income.EPS = m.Income.EPS

	out.BalanceSheet.TotalAssets = m.BalanceSheet.TotalAssets
	out.BalanceSheet.TotalDebt = m.BalanceSheet.TotalDebt
	out.BalanceSheet.Cash = m.BalanceSheet.Cash

	out.PerShare.DividendYield = m.PerShare.DividendYield

	return out
}

// fiscalPeriod derives the fiscal year and quarter from the income
// statement's reporting period. An unlabeled or annual period reads as Q4;
// with no statement at all the current calendar period is used.
func fiscalPeriod(inc *IncomeStatement, now time.Time) (int, int) {
	year := now.Year()
	quarter := (int(now.Month())-1)/3 + 1

	if inc == nil || inc.CalendarYear == "" {
		return year, quarter
	}
	if y, err := strconv.Atoi(inc.CalendarYear); err == nil {
		year = y
	}
	switch inc.Period {
	case "Q1":
		quarter = 1
	case "Q2":
		quarter = 2
	case "Q3":
		quarter = 3
	default:
		quarter = 4
	}
	return year, quarter
}
