package usecase

import (
	"context"
	"strings"
	"sync"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	"InsightHub/internal/services/sentiment"
	applogger "InsightHub/pkg/logger"
	"InsightHub/pkg/util"
)

const maxSymbols = 3

// categorySymbols maps a request category to its default symbol set, used
// when the question names no known asset.
var categorySymbols = map[string][]string{
	"crypto":      {"BTC", "ETH"},
	"stocks":      {"SPY", "QQQ"},
	"equities":    {"SPY", "QQQ"},
	"forex":       {"EURUSD"},
	"commodities": {"XAU", "WTI"},
	"macro":       {"SPY", "XAU"},
}

// assetAliases maps question tokens to symbols.
var assetAliases = map[string]string{
	"btc": "BTC", "bitcoin": "BTC",
	"eth": "ETH", "ethereum": "ETH",
	"sol": "SOL", "solana": "SOL",
	"doge": "DOGE", "dogecoin": "DOGE",
	"tsla": "TSLA", "tesla": "TSLA",
	"aapl": "AAPL", "apple": "AAPL",
	"nvda": "NVDA", "nvidia": "NVDA",
	"gold": "XAU", "oil": "WTI",
	"euro": "EURUSD", "eurusd": "EURUSD",
}

// SymbolsFor extracts the symbols relevant to a question: known asset aliases
// found in the text first, the category default set as fallback. Matching is
// case-insensitive and the result is deduplicated.
func SymbolsFor(question, category string) []string {
	var symbols []string
	for _, tok := range util.Tokenize(question) {
		if sym, ok := assetAliases[tok]; ok {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		symbols = categorySymbols[strings.ToLower(strings.TrimSpace(category))]
	}
	if len(symbols) == 0 {
		symbols = []string{"SPY"}
	}
	symbols = util.Dedupe(symbols)
	if len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}
	return symbols
}

// Fusion joins the market and news sources into one PipelineContext. Both
// sources are fetched concurrently; a failed fetch lowers the data quality
// score instead of failing the run.
type Fusion struct {
	markets      drepo.MarketDataProvider
	news         drepo.NewsProvider
	lookbackDays int
	newsLimit    int
	l            *applogger.Logger
}

// NewFusion wires the two providers.
func NewFusion(markets drepo.MarketDataProvider, news drepo.NewsProvider, lookbackDays, newsLimit int) *Fusion {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	if newsLimit <= 0 {
		newsLimit = 10
	}
	return &Fusion{markets: markets, news: news, lookbackDays: lookbackDays, newsLimit: newsLimit}
}

// SetLogger injects a structured logger.
func (f *Fusion) SetLogger(l *applogger.Logger) { f.l = l }

// Fetch resolves all external inputs for one request. The returned series
// slice holds only successful fetches; quality reflects the failures.
func (f *Fusion) Fetch(ctx context.Context, req models.InsightRequest) ([]models.MarketSeries, []models.NewsItem, float64) {
	symbols := SymbolsFor(req.Question, req.Category)
	keywords := sentiment.Keywords(req.Question)

	results := make([]models.MarketSeries, len(symbols))
	failed := make([]bool, len(symbols))
	var items []models.NewsItem
	newsOK := false

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			s, err := f.markets.GetSeries(ctx, sym, f.lookbackDays)
			if err != nil {
				failed[i] = true
				if f.l != nil {
					f.l.Warn("market fetch degraded", applogger.String("symbol", sym), applogger.Error(err))
				}
				return
			}
			results[i] = s
		}(i, sym)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err := f.news.GetNews(ctx, keywords, f.newsLimit)
		if err != nil {
			if f.l != nil {
				f.l.Warn("news fetch degraded", applogger.Error(err))
			}
			return
		}
		items = got
		newsOK = true
	}()

	wg.Wait()

	var series []models.MarketSeries
	marketQ := 0.0
	for i := range results {
		if failed[i] {
			continue // contributes 0 to the quality mean
		}
		series = append(series, results[i])
		marketQ += results[i].Quality
	}
	marketQ /= float64(len(symbols))

	newsQ := 0.0
	if newsOK {
		newsQ = 1
	}

	quality := 0.8*marketQ + 0.2*newsQ
	return series, items, quality
}

// BuildContext runs fetch, indicators and sentiment, normalizing every input
// so the pure downstream stages never see an absent value.
func (f *Fusion) BuildContext(ctx context.Context, req models.InsightRequest, fingerprint string, compute func(models.MarketSeries) models.Indicators) models.PipelineContext {
	series, items, quality := f.Fetch(ctx, req)

	pc := models.PipelineContext{
		Request:     req,
		Fingerprint: fingerprint,
		Series:      series,
		News:        items,
		Sentiment:   sentiment.Fuse(items, req.Question),
		DataQuality: quality,
	}
	for _, s := range series {
		pc.SampleCount += len(s.Points)
	}
	if len(series) > 0 {
		pc.Indicators = compute(series[0])
	} else {
		pc.Indicators = models.Indicators{Trend: models.TrendNeutral}
	}
	return pc
}
