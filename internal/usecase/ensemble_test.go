package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
)

type stubMember struct {
	name string
	prob float64
	conf float64
	cats []string
	fail bool
}

func (m *stubMember) Name() string         { return m.name }
func (m *stubMember) Weight() float64      { return 0.25 }
func (m *stubMember) Reliability() float64 { return 0.8 }
func (m *stubMember) Categories() []string {
	if len(m.cats) == 0 {
		return []string{"all"}
	}
	return m.cats
}
func (m *stubMember) Score(models.PipelineContext) (float64, float64, error) {
	if m.fail {
		return 0, 0, fmt.Errorf("%s unavailable", m.name)
	}
	return m.prob, m.conf, nil
}

func TestPredictPartialFailure(t *testing.T) {
	c := NewCombiner(
		&stubMember{name: "a", prob: 0.6, conf: 0.7},
		&stubMember{name: "b", prob: 0.55, conf: 0.6},
		&stubMember{name: "c", prob: 0.65, conf: 0.8},
		&stubMember{name: "d", fail: true},
	)

	out := c.Predict(bullishContext())
	require.Len(t, out.ModelsUsed, 3)
	assert.Greater(t, out.Probability, 0.5)
	assert.GreaterOrEqual(t, out.Consensus, 0.0)
	assert.LessOrEqual(t, out.Consensus, 1.0)
	assert.InDelta(t, 0.1, out.Disagreement, 0.001)
}

func TestPredictAllFailFallsBack(t *testing.T) {
	c := NewCombiner(
		&stubMember{name: "a", fail: true},
		&stubMember{name: "b", fail: true},
	)

	out := c.Predict(bullishContext())
	require.Len(t, out.ModelsUsed, 1)
	assert.Equal(t, "default", out.ModelsUsed[0].Name)
	assert.GreaterOrEqual(t, out.Probability, 0.05)
	assert.LessOrEqual(t, out.Probability, 0.95)
	assert.Equal(t, 1.0, out.Consensus)
	assert.Equal(t, 0.0, out.Disagreement)
}

func TestPredictCategoryFilter(t *testing.T) {
	c := NewCombiner(
		&stubMember{name: "everywhere", prob: 0.5, conf: 0.5},
		&stubMember{name: "crypto-only", prob: 0.9, conf: 0.9, cats: []string{"crypto"}},
	)

	pc := bullishContext()
	pc.Request.Category = "forex"
	out := c.Predict(pc)
	require.Len(t, out.ModelsUsed, 1)
	assert.Equal(t, "everywhere", out.ModelsUsed[0].Name)

	pc.Request.Category = "crypto"
	out = c.Predict(pc)
	assert.Len(t, out.ModelsUsed, 2)
}

func TestPredictAgreementScoresHighConsensus(t *testing.T) {
	tight := NewCombiner(
		&stubMember{name: "a", prob: 0.6, conf: 0.7},
		&stubMember{name: "b", prob: 0.61, conf: 0.7},
	).Predict(bullishContext())

	spread := NewCombiner(
		&stubMember{name: "a", prob: 0.2, conf: 0.7},
		&stubMember{name: "b", prob: 0.8, conf: 0.7},
	).Predict(bullishContext())

	assert.Greater(t, tight.Consensus, spread.Consensus)
	assert.Greater(t, spread.Disagreement, tight.Disagreement)
}

func TestDefaultMembersDeterministic(t *testing.T) {
	pc := bullishContext()
	pc.Fingerprint = "abc123"
	pc.News = []models.NewsItem{{Title: "BTC rallies", Sentiment: 0.4}}

	c := NewCombiner()
	a := c.Predict(pc)
	b := c.Predict(pc)
	assert.Equal(t, a, b)
}
