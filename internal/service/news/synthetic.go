package news

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
)

// SyntheticProvider generates deterministic headlines when no upstream API
// key is configured, seeded from the keyword set so identical queries yield
// identical sentiment inputs.
type SyntheticProvider struct{}

func NewSyntheticProvider() *SyntheticProvider { return &SyntheticProvider{} }

var headlineForms = []string{
	"%s rallies as institutional interest grows",
	"Analysts split on %s outlook for the quarter",
	"%s slides amid broader market uncertainty",
	"Regulatory clarity lifts %s market confidence",
	"%s volume surges to multi-week high",
	"Profit taking pressures %s after recent run",
}

var syntheticSources = []string{"MarketWire", "FinDaily", "ChainDesk", "MacroBrief"}

func (p *SyntheticProvider) GetNews(_ context.Context, keywords []string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > len(headlineForms) {
		limit = len(headlineForms)
	}

	subject := "the market"
	if len(keywords) > 0 {
		subject = strings.ToUpper(keywords[0])
	}

	seedKey := strings.ToLower(strings.Join(keywords, "|"))
	sum := sha256.Sum256([]byte(seedKey))
	rng := rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)))

	now := time.Now().UTC()
	items := make([]models.NewsItem, 0, limit)
	for i := 0; i < limit; i++ {
		items = append(items, models.NewsItem{
			Title:       fmt.Sprintf(headlineForms[i], subject),
			Source:      syntheticSources[rng.Intn(len(syntheticSources))],
			Sentiment:   math.Round((rng.Float64()*2-1)*100) / 100,
			PublishedAt: now.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	return items, nil
}

var _ drepo.NewsProvider = (*SyntheticProvider)(nil)
