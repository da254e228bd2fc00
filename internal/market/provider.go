package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned by a Provider when the upstream reports an
// unknown or invalid symbol. The gateway converts it to an empty result.
var ErrNotFound = errors.New("symbol not found")

// Provider fetches raw market data from the upstream source. Implementations
// return provider-shaped payloads; normalization happens in the gateway.
type Provider interface {
	// Quotes fetches quotes for one or more symbols in a single call.
	Quotes(ctx context.Context, symbols []string) ([]ProviderQuote, error)
	// Search looks up symbols matching a free-text query.
	Search(ctx context.Context, query string) ([]ProviderSearchItem, error)
	// Chart fetches OHLCV bars between from and to at the given interval.
	Chart(ctx context.Context, symbol, interval string, from, to time.Time) ([]ProviderBar, error)
}

// ProviderQuote matches the upstream quote payload. Numeric fields are
// pointers so "missing" is distinguishable from zero.
type ProviderQuote struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	Exchange                   string   `json:"exchange"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
	AverageDailyVolume3Month   *int64   `json:"averageDailyVolume3Month"`
	AverageDailyVolume10Day    *int64   `json:"averageDailyVolume10Day"`
	MarketCap                  *float64 `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
}

// ProviderSearchItem is one raw search hit.
type ProviderSearchItem struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}

// ProviderBar is one raw OHLCV bar. Any nil field marks a gap the gateway
// drops.
type ProviderBar struct {
	Timestamp int64
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *int64
}

// YahooProvider talks to the Yahoo Finance public endpoints.
type YahooProvider struct {
	baseURL string
	http    *http.Client
}

// NewYahooProvider creates a provider client. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewYahooProvider(baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooProvider{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type quoteEnvelope struct {
	QuoteResponse struct {
		Result []ProviderQuote `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteResponse"`
}

type searchEnvelope struct {
	Quotes []ProviderSearchItem `json:"quotes"`
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (p *YahooProvider) Quotes(ctx context.Context, symbols []string) ([]ProviderQuote, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	var env quoteEnvelope
	if err := p.getJSON(ctx, "/v7/finance/quote", q, &env); err != nil {
		return nil, err
	}
	if env.QuoteResponse.Error != nil {
		return nil, providerError(env.QuoteResponse.Error)
	}
	return env.QuoteResponse.Result, nil
}

func (p *YahooProvider) Search(ctx context.Context, query string) ([]ProviderSearchItem, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", "20")
	q.Set("newsCount", "0")

	var env searchEnvelope
	if err := p.getJSON(ctx, "/v1/finance/search", q, &env); err != nil {
		return nil, err
	}
	return env.Quotes, nil
}

func (p *YahooProvider) Chart(ctx context.Context, symbol, interval string, from, to time.Time) ([]ProviderBar, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", from.Unix()))
	q.Set("period2", fmt.Sprintf("%d", to.Unix()))
	q.Set("interval", interval)

	var env chartEnvelope
	if err := p.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q, &env); err != nil {
		return nil, err
	}
	if env.Chart.Error != nil {
		return nil, providerError(env.Chart.Error)
	}
	if len(env.Chart.Result) == 0 || len(env.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	res := env.Chart.Result[0]
	ind := res.Indicators.Quote[0]
	bars := make([]ProviderBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		bar := ProviderBar{Timestamp: ts * 1000}
		if i < len(ind.Open) {
			bar.Open = ind.Open[i]
		}
		if i < len(ind.High) {
			bar.High = ind.High[i]
		}
		if i < len(ind.Low) {
			bar.Low = ind.Low[i]
		}
		if i < len(ind.Close) {
			bar.Close = ind.Close[i]
		}
		if i < len(ind.Volume) {
			bar.Volume = ind.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func (p *YahooProvider) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := p.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "finview/1.0")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("provider payload decode failed: %w", err)
	}
	return nil
}

func providerError(e *apiError) error {
	if e.Code == "Not Found" || strings.Contains(e.Description, "Invalid") {
		return ErrNotFound
	}
	return fmt.Errorf("provider error %s: %s", e.Code, e.Description)
}
