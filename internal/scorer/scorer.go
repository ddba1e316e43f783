// Package scorer implements the pure, deterministic ranking function
// used by the queue engine: a song's counters in, a score out, no I/O.
package scorer

import (
	"math"
	"sync"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/config"
)

// maxCacheEntries bounds the memoization cache; it is cleared wholesale
// once it reaches this size rather than tracking per-entry recency.
const maxCacheEntries = 4096

// fingerprint is the tuple the piecewise function actually depends on.
// Keying the cache on it (including Loved) means any counter mutation —
// including a love/unlove toggle — naturally produces a cache miss, so
// no separate invalidation path is needed.
type fingerprint struct {
	touches int
	listens int
	skips   int
	loved   bool
}

// Scorer evaluates Score against a fixed ScoringContext, memoizing by
// fingerprint. It owns its cache; there is no package-level state.
type Scorer struct {
	ctx config.ScoringConfig

	mu    sync.Mutex
	cache map[fingerprint]float64
}

// New builds a Scorer bound to ctx. Callers that don't want memoization
// can ignore the cache entirely by calling Score on distinct Scorer
// values, but the default path always benefits from it.
func New(ctx config.ScoringConfig) *Scorer {
	return &Scorer{ctx: ctx, cache: make(map[fingerprint]float64)}
}

// Score ranks a song. Guaranteed non-negative and finite for finite
// inputs; identical inputs always produce identical outputs.
func (s *Scorer) Score(song catalogue.Song) float64 {
	fp := fingerprint{touches: song.Touches, listens: song.Listens, skips: song.Skips, loved: song.Loved}

	s.mu.Lock()
	if v, ok := s.cache[fp]; ok {
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	v := compute(fp, s.ctx)

	s.mu.Lock()
	if len(s.cache) >= maxCacheEntries {
		s.cache = make(map[fingerprint]float64)
	}
	s.cache[fp] = v
	s.mu.Unlock()

	return v
}

func compute(fp fingerprint, ctx config.ScoringConfig) float64 {
	t, l, sk := fp.touches, fp.listens, fp.skips

	var base float64
	if t < ctx.TouchThreshold {
		wL, wS := regimeWeights(t, ctx)
		base = wL*float64(l) - wS*float64(sk)
	} else {
		d := logBase(ctx.DampeningBase, float64(t+1))
		base = d * float64(l-sk)
	}

	clamped := math.Max(base, 0)

	score := clamped
	if fp.loved {
		score *= ctx.LoveMultiplier
	}
	return score
}

func regimeWeights(touches int, ctx config.ScoringConfig) (listenWeight, skipWeight float64) {
	switch {
	case touches < ctx.SmallThreshold:
		return ctx.Early.Listen, ctx.Early.Skip
	case touches <= ctx.BigThreshold:
		return ctx.Learning.Listen, ctx.Learning.Skip
	default:
		return ctx.Stable.Listen, ctx.Stable.Skip
	}
}

func logBase(base, x float64) float64 {
	return math.Log(x) / math.Log(base)
}

// Weight applies connection weighting to a base score given the
// observed edge count between two songs: it amplifies songs reached by
// a frequently-taken transition. Pure; no memoization needed since
// callers compute it once per candidate per walk step.
func Weight(baseScore float64, edgeCount int, correctionFactor float64) float64 {
	if edgeCount <= 0 {
		return baseScore
	}
	return baseScore * logBase(1.2, float64(edgeCount+1)) * correctionFactor
}
