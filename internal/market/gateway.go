package market

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finview/finview/internal/cache"
)

// usExchanges are the exchange codes symbol search is restricted to.
var usExchanges = map[string]bool{
	"NYQ": true, "NMS": true, "NGM": true, "NCM": true, "NYS": true,
	"NAS": true, "PCX": true, "ASE": true, "BTS": true,
	"NYSE": true, "NASDAQ": true, "AMEX": true, "ARCA": true, "BATS": true,
}

// indexSymbols maps the major index ETFs to display names.
var indexSymbols = map[string]string{
	"SPY": "S&P 500",
	"DIA": "Dow Jones",
	"QQQ": "Nasdaq 100",
	"IWM": "Russell 2000",
}

// sectorSymbols maps the sector ETFs to display names.
var sectorSymbols = map[string]string{
	"XLK":  "Technology",
	"XLV":  "Healthcare",
	"XLF":  "Financials",
	"XLE":  "Energy",
	"XLI":  "Industrials",
	"XLP":  "Consumer Staples",
	"XLY":  "Consumer Discretionary",
	"XLB":  "Materials",
	"XLRE": "Real Estate",
	"XLU":  "Utilities",
	"XLC":  "Communication",
}

const maxSearchResults = 10

// Gateway serves normalized market data cache-first. Provider failures
// degrade to empty results; transport errors never reach the caller.
type Gateway struct {
	store    cache.Store
	provider Provider
}

// NewGateway creates a Gateway reading through store and falling back to
// provider on a miss.
func NewGateway(store cache.Store, provider Provider) *Gateway {
	return &Gateway{store: store, provider: provider}
}

// GetQuote returns the quote for a symbol, or nil when the symbol is
// unknown or the provider has no usable price.
func (g *Gateway) GetQuote(ctx context.Context, symbol string) *Quote {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil
	}

	var cached Quote
	if cache.GetJSON(ctx, g.store, cache.QuoteKey(sym), &cached) {
		return &cached
	}

	results, err := g.provider.Quotes(ctx, []string{sym})
	if err != nil {
		g.logProviderErr("quote fetch failed", sym, err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	quote, ok := normalizeQuote(results[0], sym)
	if !ok {
		return nil
	}

	cache.SetJSON(ctx, g.store, cache.QuoteKey(quote.Symbol), quote, cache.TTLQuote)
	return &quote
}

// GetQuotes returns quotes for multiple symbols. Symbols already cached are
// served without a provider call; only the uncached remainder goes out in a
// single batch. A batch failure still returns the cache hits. Results come
// back in first-seen request order regardless of completion order.
func (g *Gateway) GetQuotes(ctx context.Context, symbols []string) []Quote {
	order := dedupeSymbols(symbols)
	if len(order) == 0 {
		return nil
	}

	found := make(map[string]Quote, len(order))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, sym := range order {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			var q Quote
			if cache.GetJSON(ctx, g.store, cache.QuoteKey(sym), &q) {
				mu.Lock()
				found[sym] = q
				mu.Unlock()
			}
		}(sym)
	}
	wg.Wait()

	uncached := make([]string, 0, len(order))
	for _, sym := range order {
		if _, ok := found[sym]; !ok {
			uncached = append(uncached, sym)
		}
	}

	if len(uncached) > 0 {
		results, err := g.provider.Quotes(ctx, uncached)
		if err != nil {
			g.logProviderErr("batch quote fetch failed", strings.Join(uncached, ","), err)
		} else {
			for _, pq := range results {
				quote, ok := normalizeQuote(pq, pq.Symbol)
				if !ok {
					continue
				}
				cache.SetJSON(ctx, g.store, cache.QuoteKey(quote.Symbol), quote, cache.TTLQuote)
				found[quote.Symbol] = quote
			}
		}
	}

	out := make([]Quote, 0, len(order))
	for _, sym := range order {
		if q, ok := found[sym]; ok {
			out = append(out, q)
		}
	}
	return out
}

// SearchSymbols returns up to ten equity/ETF matches on supported US
// exchanges for a free-text query.
func (g *Gateway) SearchSymbols(ctx context.Context, query string) []SymbolResult {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}

	key := cache.SearchKey(q)
	var cached []SymbolResult
	if cache.GetJSON(ctx, g.store, key, &cached) {
		return cached
	}

	items, err := g.provider.Search(ctx, q)
	if err != nil {
		g.logProviderErr("symbol search failed", q, err)
		return nil
	}

	results := make([]SymbolResult, 0, maxSearchResults)
	for _, item := range items {
		if item.Symbol == "" || !usExchanges[item.Exchange] {
			continue
		}
		if item.QuoteType != "EQUITY" && item.QuoteType != "ETF" {
			continue
		}
		name := item.ShortName
		if name == "" {
			name = item.LongName
		}
		if name == "" {
			name = item.Symbol
		}
		results = append(results, SymbolResult{
			Symbol:   item.Symbol,
			Name:     name,
			Exchange: item.Exchange,
			Type:     item.QuoteType,
		})
		if len(results) >= maxSearchResults {
			break
		}
	}

	cache.SetJSON(ctx, g.store, key, results, cache.TTLSearch)
	return results
}

// GetChartData returns OHLCV bars for a symbol and range, ascending by
// timestamp. Unknown symbols and provider failures yield an empty slice.
func (g *Gateway) GetChartData(ctx context.Context, symbol string, rng Range) []PricePoint {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil
	}
	spec, ok := rangeSpecs[rng]
	if !ok {
		slog.Warn("invalid chart range", "range", rng)
		return nil
	}

	key := cache.ChartKey(sym, string(rng))
	var cached []PricePoint
	if cache.GetJSON(ctx, g.store, key, &cached) {
		return cached
	}

	to := time.Now()
	from := to.AddDate(0, 0, -spec.days)
	if rng == Range1D {
		// Widen the intraday window so weekends and holidays still
		// produce a session to filter down to.
		from = from.AddDate(0, 0, -5)
	}

	bars, err := g.provider.Chart(ctx, sym, spec.interval, from, to)
	if err != nil {
		g.logProviderErr("chart fetch failed", sym, err)
		return nil
	}

	points := make([]PricePoint, 0, len(bars))
	for _, b := range bars {
		if b.Open == nil || b.High == nil || b.Low == nil || b.Close == nil || b.Volume == nil {
			continue
		}
		points = append(points, PricePoint{
			Timestamp: b.Timestamp,
			Open:      *b.Open,
			High:      *b.High,
			Low:       *b.Low,
			Close:     *b.Close,
			Volume:    *b.Volume,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })

	if rng == Range1D {
		points = lastSession(points)
	}
	if len(points) == 0 {
		return nil
	}

	cache.SetJSON(ctx, g.store, key, points, spec.ttl)
	return points
}

// GetIndices returns quotes for the major market indices, sorted by symbol.
func (g *Gateway) GetIndices(ctx context.Context) []Index {
	var cached []Index
	if cache.GetJSON(ctx, g.store, cache.KeyIndices, &cached) {
		return cached
	}

	symbols := sortedKeys(indexSymbols)
	results, err := g.provider.Quotes(ctx, symbols)
	if err != nil {
		g.logProviderErr("index fetch failed", strings.Join(symbols, ","), err)
		return nil
	}

	indices := make([]Index, 0, len(results))
	for _, pq := range results {
		if pq.RegularMarketPrice == nil || *pq.RegularMarketPrice <= 0 {
			continue
		}
		name, ok := indexSymbols[pq.Symbol]
		if !ok {
			name = pq.Symbol
		}
		indices = append(indices, Index{
			Symbol:        pq.Symbol,
			Name:          name,
			Price:         fval(pq.RegularMarketPrice),
			Change:        fval(pq.RegularMarketChange),
			ChangePercent: fval(pq.RegularMarketChangePercent),
			PreviousClose: fval(pq.RegularMarketPreviousClose),
			DayHigh:       fval(pq.RegularMarketDayHigh),
			DayLow:        fval(pq.RegularMarketDayLow),
			Volume:        ival(pq.RegularMarketVolume),
			UpdatedAt:     time.Now().UTC(),
		})
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i].Symbol < indices[j].Symbol })

	cache.SetJSON(ctx, g.store, cache.KeyIndices, indices, cache.TTLIndices)
	return indices
}

// GetSectors returns sector ETF snapshots sorted best to worst by day
// change.
func (g *Gateway) GetSectors(ctx context.Context) []Sector {
	var cached []Sector
	if cache.GetJSON(ctx, g.store, cache.KeySectors, &cached) {
		return cached
	}

	symbols := sortedKeys(sectorSymbols)
	results, err := g.provider.Quotes(ctx, symbols)
	if err != nil {
		g.logProviderErr("sector fetch failed", strings.Join(symbols, ","), err)
		return nil
	}

	sectors := make([]Sector, 0, len(results))
	for _, pq := range results {
		if pq.RegularMarketPrice == nil || *pq.RegularMarketPrice <= 0 {
			continue
		}
		name, ok := sectorSymbols[pq.Symbol]
		if !ok {
			name = pq.Symbol
		}
		sectors = append(sectors, Sector{
			Symbol:        pq.Symbol,
			Name:          name,
			ChangePercent: fval(pq.RegularMarketChangePercent),
			Volume:        ival(pq.RegularMarketVolume),
		})
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i].ChangePercent > sectors[j].ChangePercent })

	cache.SetJSON(ctx, g.store, cache.KeySectors, sectors, cache.TTLSectors)
	return sectors
}

// ClearSymbol invalidates every cache entry owned by a symbol.
func (g *Gateway) ClearSymbol(ctx context.Context, symbol string) {
	cache.ClearSymbol(ctx, g.store, symbol)
}

func (g *Gateway) logProviderErr(msg, subject string, err error) {
	if errors.Is(err, ErrNotFound) {
		slog.Debug("symbol not found upstream", "subject", subject)
		return
	}
	slog.Error(msg, "subject", subject, "error", err)
}

// normalizeQuote converts a provider payload into the canonical Quote.
// Missing numeric fields default to zero except the P/E ratio, which stays
// null. A quote without a positive price is unusable and is never cached.
func normalizeQuote(pq ProviderQuote, fallbackSymbol string) (Quote, bool) {
	if pq.RegularMarketPrice == nil || *pq.RegularMarketPrice <= 0 {
		return Quote{}, false
	}

	sym := strings.ToUpper(strings.TrimSpace(pq.Symbol))
	if sym == "" {
		sym = strings.ToUpper(strings.TrimSpace(fallbackSymbol))
	}
	if sym == "" {
		return Quote{}, false
	}

	name := pq.ShortName
	if name == "" {
		name = pq.LongName
	}
	if name == "" {
		name = sym
	}
	exchange := pq.Exchange
	if exchange == "" {
		exchange = "Unknown"
	}

	avgVolume := pq.AverageDailyVolume3Month
	if avgVolume == nil {
		avgVolume = pq.AverageDailyVolume10Day
	}

	return Quote{
		Symbol:        sym,
		Name:          name,
		Exchange:      exchange,
		Price:         *pq.RegularMarketPrice,
		Change:        fval(pq.RegularMarketChange),
		ChangePercent: fval(pq.RegularMarketChangePercent),
		Open:          fval(pq.RegularMarketOpen),
		High:          fval(pq.RegularMarketDayHigh),
		Low:           fval(pq.RegularMarketDayLow),
		PreviousClose: fval(pq.RegularMarketPreviousClose),
		Volume:        ival(pq.RegularMarketVolume),
		AvgVolume:     ival(avgVolume),
		MarketCap:     fval(pq.MarketCap),
		PERatio:       pq.TrailingPE,
		WeekHigh52:    fval(pq.FiftyTwoWeekHigh),
		WeekLow52:     fval(pq.FiftyTwoWeekLow),
		UpdatedAt:     time.Now().UTC(),
	}, true
}

// lastSession trims an intraday series to bars from the most recent trading
// day in the data.
func lastSession(points []PricePoint) []PricePoint {
	if len(points) == 0 {
		return points
	}
	last := time.UnixMilli(points[len(points)-1].Timestamp)
	dayStart := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location()).UnixMilli()

	out := points[:0:0]
	for _, p := range points {
		if p.Timestamp >= dayStart {
			out = append(out, p)
		}
	}
	return out
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fval(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func ival(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
