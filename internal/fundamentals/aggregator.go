package fundamentals

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/finview/finview/internal/cache"
	"github.com/finview/finview/internal/tier"
)

// Aggregator serves tiered fundamentals views cache-first. The free tier
// issues the minimal set of statement calls; pro additionally fetches cash
// flow and growth and sees the full metric surface.
type Aggregator struct {
	store    cache.Store
	provider StatementsProvider
}

// NewAggregator creates an Aggregator over the given cache and statements
// provider.
func NewAggregator(store cache.Store, provider StatementsProvider) *Aggregator {
	return &Aggregator{store: store, provider: provider}
}

// GetFundamentals returns the fundamentals view for (symbol, tier), or nil
// when the provider has no data at all for the symbol. "No data" is
// distinct from "has data, fields unknown": the latter returns a record
// with null fields.
func (a *Aggregator) GetFundamentals(ctx context.Context, symbol string, t tier.Tier) *Metrics {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil
	}

	key := cache.FundamentalsKey(sym, string(t))
	var cached Metrics
	if cache.GetJSON(ctx, a.store, key, &cached) {
		return &cached
	}

	src := a.fetch(ctx, sym, t == tier.Pro)
	if src.empty() {
		slog.Warn("no fundamental data found", "symbol", sym)
		return nil
	}

	metrics := buildMetrics(sym, src, time.Now().UTC())
	if t != tier.Pro {
		metrics = applyFreeMask(metrics)
	}

	cache.SetJSON(ctx, a.store, key, metrics, cache.TTLFundamentals)
	return metrics
}

// ClearCache drops both tier views for a symbol.
func (a *Aggregator) ClearCache(ctx context.Context, symbol string) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	a.store.Delete(ctx,
		cache.FundamentalsKey(sym, string(tier.Free)),
		cache.FundamentalsKey(sym, string(tier.Pro)),
	)
}

// fetch issues the per-tier statement calls concurrently. Individual call
// failures are logged and read as "endpoint had nothing"; only the caller
// decides whether the whole set was empty.
func (a *Aggregator) fetch(ctx context.Context, symbol string, pro bool) statementSet {
	var src statementSet
	var wg sync.WaitGroup

	run := func(name string, f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				slog.Warn("statement fetch failed", "endpoint", name, "symbol", symbol, "error", err)
			}
		}()
	}

	run("ratios-ttm", func() (err error) {
		src.ratios, err = a.provider.RatiosTTM(ctx, symbol)
		return
	})
	run("key-metrics", func() (err error) {
		src.keyMetrics, err = a.provider.KeyMetrics(ctx, symbol)
		return
	})
	run("income-statement", func() (err error) {
		src.income, err = a.provider.IncomeStatement(ctx, symbol)
		return
	})
	run("balance-sheet", func() (err error) {
		src.balance, err = a.provider.BalanceSheet(ctx, symbol)
		return
	})
	if pro {
		run("cash-flow", func() (err error) {
			src.cashFlow, err = a.provider.CashFlowStatement(ctx, symbol)
			return
		})
		run("financial-growth", func() (err error) {
			src.growth, err = a.provider.FinancialGrowth(ctx, symbol)
			return
		})
	}

	wg.Wait()
	return src
}
