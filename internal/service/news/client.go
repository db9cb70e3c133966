package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	"InsightHub/pkg/config"
	xhttp "InsightHub/pkg/http"
)

// HTTPProvider fetches scored headlines from the news API.
type HTTPProvider struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

func NewHTTPProvider(cfg *config.Config) *HTTPProvider {
	return &HTTPProvider{
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.News.Timeout)),
		baseURL: cfg.News.BaseURL,
		apiKey:  cfg.News.APIKey,
	}
}

type newsPayload struct {
	Articles []struct {
		Title       string  `json:"title"`
		Source      string  `json:"source"`
		Sentiment   float64 `json:"sentiment"`
		PublishedAt int64   `json:"published_at"`
	} `json:"articles"`
}

func (p *HTTPProvider) GetNews(ctx context.Context, keywords []string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	var payload newsPayload
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/headlines",
		QueryParams: map[string][]string{
			"q":     {strings.Join(keywords, " ")},
			"limit": {fmt.Sprintf("%d", limit)},
			"token": {p.apiKey},
		},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}

	items := make([]models.NewsItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       a.Title,
			Source:      a.Source,
			Sentiment:   a.Sentiment,
			PublishedAt: time.Unix(a.PublishedAt, 0).UTC(),
		})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

var _ drepo.NewsProvider = (*HTTPProvider)(nil)
