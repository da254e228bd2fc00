package risk

import "math"

// tradingDaysPerYear is the annualization factor for daily volatility.
const tradingDaysPerYear = 252

// dailyReturns computes simple percentage changes between consecutive
// closes. A zero or missing price is skipped rather than divided by.
func dailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev > 0 && cur > 0 {
			returns = append(returns, (cur-prev)/prev)
		}
	}
	return returns
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// annualizedVolatility converts daily return dispersion to an annualized
// percentage using sqrt(252).
func annualizedVolatility(dailyRets []float64) float64 {
	if len(dailyRets) == 0 {
		return 0
	}
	return stdDev(dailyRets) * math.Sqrt(tradingDaysPerYear) * 100
}

// beta estimates sensitivity to the benchmark as cov(stock, benchmark) /
// var(benchmark) over the trailing aligned window. Returns nil below 30
// observations of either series or when the benchmark has no variance.
func beta(stockReturns, benchReturns []float64) *float64 {
	if len(stockReturns) < 30 || len(benchReturns) < 30 {
		return nil
	}

	n := len(stockReturns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	stock := stockReturns[len(stockReturns)-n:]
	bench := benchReturns[len(benchReturns)-n:]

	var stockSum, benchSum float64
	for i := 0; i < n; i++ {
		stockSum += stock[i]
		benchSum += bench[i]
	}
	stockMean := stockSum / float64(n)
	benchMean := benchSum / float64(n)

	var cov, benchVar float64
	for i := 0; i < n; i++ {
		sd := stock[i] - stockMean
		bd := bench[i] - benchMean
		cov += sd * bd
		benchVar += bd * bd
	}
	cov /= float64(n)
	benchVar /= float64(n)

	if benchVar == 0 {
		return nil
	}
	b := cov / benchVar
	return &b
}

// maxDrawdown is the largest peak-to-trough percentage decline over the
// series.
func maxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	var worst float64
	peak := prices[0]
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (peak - p) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

// tail returns the last n elements of values, or all of them when shorter.
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
