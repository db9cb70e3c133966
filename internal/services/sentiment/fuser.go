package sentiment

import (
	"InsightHub/internal/domain/models"
	"InsightHub/pkg/util"
)

// Fuse combines per-item sentiment scores into one signed value in [-1, 1].
// The base signal is the mean item score; relevance weighting boosts items
// whose titles mention question keywords. Total by construction: no items
// yields neutral 0.
func Fuse(items []models.NewsItem, question string) float64 {
	if len(items) == 0 {
		return 0
	}

	sum := 0.0
	for _, it := range items {
		sum += clamp(it.Sentiment)
	}
	base := sum / float64(len(items))

	weight := relevanceWeight(items, question)
	return clamp(base * weight)
}

// relevanceWeight starts at a floor and grows with the share of items whose
// titles mention a question keyword, additive and capped at 1.0.
func relevanceWeight(items []models.NewsItem, question string) float64 {
	keywords := Keywords(question)
	if len(keywords) == 0 {
		return 0.5
	}

	matched := 0
	for _, it := range items {
		for _, kw := range keywords {
			if util.ContainsFold(it.Title, kw) {
				matched++
				break
			}
		}
	}

	w := 0.5 + float64(matched)/float64(len(items))
	if w > 1 {
		w = 1
	}
	return w
}

// Keywords extracts the significant lowercased tokens of a question.
func Keywords(question string) []string {
	tokens := util.Tokenize(question)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 3 || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return util.Dedupe(out)
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "will": true, "with": true,
	"can": true, "could": true, "would": true, "should": true, "this": true,
	"that": true, "what": true, "when": true, "how": true, "why": true,
	"are": true, "was": true, "has": true, "have": true, "been": true,
	"does": true, "its": true, "his": true, "her": true, "their": true,
	"from": true, "into": true, "over": true, "under": true, "than": true,
	"exceed": true, "reach": true, "before": true, "after": true, "above": true,
	"below": true,
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
