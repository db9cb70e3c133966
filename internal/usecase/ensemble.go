package usecase

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"InsightHub/internal/domain/models"
)

// Member is one independent scoring strategy in the advanced-mode ensemble.
// A member rejects by returning an error; rejected members are excluded from
// the weighted combination.
type Member interface {
	Name() string
	Weight() float64
	Reliability() float64
	Categories() []string // "all" matches every category
	Score(pc models.PipelineContext) (prob, conf float64, err error)
}

// Combiner reconciles member outputs into one probability.
type Combiner struct {
	members []Member
}

// NewCombiner builds a combiner over the default member set.
func NewCombiner(members ...Member) *Combiner {
	if len(members) == 0 {
		members = DefaultMembers()
	}
	return &Combiner{members: members}
}

// DefaultMembers returns the built-in strategies.
func DefaultMembers() []Member {
	return []Member{
		&momentumMember{},
		&meanReversionMember{},
		&sentimentMember{},
		&fundamentalMember{},
	}
}

// Predict runs all applicable members concurrently and combines the survivors
// by weight x reliability. If every member rejects, a deterministic default
// model stands in so the caller still receives a valid output.
func (c *Combiner) Predict(pc models.PipelineContext) models.EnsembleOutput {
	applicable := c.applicable(pc.Request.Category)

	type result struct {
		member Member
		prob   float64
		conf   float64
		err    error
	}
	results := make([]result, len(applicable))

	var wg sync.WaitGroup
	for i, m := range applicable {
		wg.Add(1)
		go func(i int, m Member) {
			defer wg.Done()
			p, cf, err := m.Score(pc)
			results[i] = result{member: m, prob: p, conf: cf, err: err}
		}(i, m)
	}
	wg.Wait()

	var used []models.MemberScore
	var wSum, pSum, cSum float64
	var probs []float64
	for _, r := range results {
		if r.err != nil {
			continue
		}
		w := r.member.Weight() * r.member.Reliability()
		used = append(used, models.MemberScore{
			Name:        r.member.Name(),
			Weight:      r.member.Weight(),
			Reliability: r.member.Reliability(),
			Probability: round3(r.prob),
			Confidence:  round3(r.conf),
		})
		wSum += w
		pSum += w * r.prob
		cSum += w * r.conf
		probs = append(probs, r.prob)
	}

	if len(used) == 0 {
		return fallbackEnsemble(pc)
	}

	sort.Slice(used, func(i, j int) bool { return used[i].Name < used[j].Name })

	return models.EnsembleOutput{
		Probability:  round3(pSum / wSum),
		Confidence:   round3(cSum / wSum),
		ModelsUsed:   used,
		Consensus:    round3(consensus(probs)),
		Disagreement: round3(disagreement(probs)),
	}
}

func (c *Combiner) applicable(category string) []Member {
	cat := strings.ToLower(strings.TrimSpace(category))
	var out []Member
	for _, m := range c.members {
		for _, tag := range m.Categories() {
			if tag == "all" || tag == cat {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// consensus maps the spread of member probabilities to [0,1]; tight agreement
// scores near 1.
func consensus(probs []float64) float64 {
	if len(probs) < 2 {
		return 1
	}
	mean := 0.0
	for _, p := range probs {
		mean += p
	}
	mean /= float64(len(probs))
	variance := 0.0
	for _, p := range probs {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(probs))
	return 1 - math.Min(1, math.Sqrt(variance)*2)
}

func disagreement(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	lo, hi := probs[0], probs[0]
	for _, p := range probs[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return hi - lo
}

// fallbackEnsemble is the deterministic default used when every member
// rejects.
func fallbackEnsemble(pc models.PipelineContext) models.EnsembleOutput {
	prob, conf := Calibrate(pc)
	return models.EnsembleOutput{
		Probability: round3(prob),
		Confidence:  round3(conf),
		ModelsUsed: []models.MemberScore{{
			Name:        "default",
			Weight:      1,
			Reliability: 1,
			Probability: round3(prob),
			Confidence:  round3(conf),
		}},
		Consensus:    1,
		Disagreement: 0,
	}
}

// memberRNG derives a deterministic generator from the request fingerprint
// and member name, so identical requests always score identically.
func memberRNG(fingerprint, name string) *rand.Rand {
	sum := sha256.Sum256([]byte(fingerprint + "|" + name))
	return rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)))
}

type momentumMember struct{}

func (momentumMember) Name() string         { return "momentum" }
func (momentumMember) Weight() float64      { return 0.3 }
func (momentumMember) Reliability() float64 { return 0.8 }
func (momentumMember) Categories() []string { return []string{"all"} }
func (momentumMember) Score(pc models.PipelineContext) (float64, float64, error) {
	if len(pc.Series) == 0 {
		return 0, 0, fmt.Errorf("momentum: no market series")
	}
	base := 0.5
	switch pc.Indicators.Trend {
	case models.TrendUp:
		base = 0.5 + 0.2*pc.Indicators.Strength
	case models.TrendDown:
		base = 0.5 - 0.2*pc.Indicators.Strength
	}
	return clampTo(base, 0.05, 0.95), clampTo(0.4+0.4*pc.Indicators.Strength, 0.1, 0.95), nil
}

type meanReversionMember struct{}

func (meanReversionMember) Name() string         { return "mean_reversion" }
func (meanReversionMember) Weight() float64      { return 0.2 }
func (meanReversionMember) Reliability() float64 { return 0.7 }
func (meanReversionMember) Categories() []string { return []string{"all"} }
func (meanReversionMember) Score(pc models.PipelineContext) (float64, float64, error) {
	if pc.Indicators.RSI == nil {
		return 0, 0, fmt.Errorf("mean reversion: RSI unavailable")
	}
	// Bets against the extreme: far-from-50 RSI reverts toward the mean.
	prob := 0.5 + (50-*pc.Indicators.RSI)/50*0.3
	conf := 0.4 + math.Abs(*pc.Indicators.RSI-50)/50*0.4
	return clampTo(prob, 0.05, 0.95), clampTo(conf, 0.1, 0.95), nil
}

type sentimentMember struct{}

func (sentimentMember) Name() string         { return "sentiment" }
func (sentimentMember) Weight() float64      { return 0.2 }
func (sentimentMember) Reliability() float64 { return 0.6 }
func (sentimentMember) Categories() []string { return []string{"all"} }
func (sentimentMember) Score(pc models.PipelineContext) (float64, float64, error) {
	if len(pc.News) == 0 {
		return 0, 0, fmt.Errorf("sentiment: no news items")
	}
	prob := 0.5 + pc.Sentiment*0.25
	conf := 0.3 + math.Min(1, float64(len(pc.News))/10)*0.4
	return clampTo(prob, 0.05, 0.95), clampTo(conf, 0.1, 0.95), nil
}

// fundamentalMember is a crypto/equities valuation heuristic. Its residual
// term comes from a fingerprint-seeded generator so scores stay stable per
// request.
type fundamentalMember struct{}

func (fundamentalMember) Name() string         { return "fundamental" }
func (fundamentalMember) Weight() float64      { return 0.3 }
func (fundamentalMember) Reliability() float64 { return 0.75 }
func (fundamentalMember) Categories() []string { return []string{"crypto", "stocks", "equities"} }
func (fundamentalMember) Score(pc models.PipelineContext) (float64, float64, error) {
	if len(pc.Series) == 0 {
		return 0, 0, fmt.Errorf("fundamental: no market series")
	}
	rng := memberRNG(pc.Fingerprint, "fundamental")
	base := 0.5 + pc.Series[0].Change24h/100*0.5
	residual := (rng.Float64() - 0.5) * 0.1
	prob := clampTo(base+residual, 0.05, 0.95)
	conf := clampTo(0.3+0.4*pc.DataQuality, 0.1, 0.95)
	return prob, conf, nil
}
