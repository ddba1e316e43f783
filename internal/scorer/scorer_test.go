package scorer

import (
	"math"
	"testing"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/config"
)

func defaultCtx() config.ScoringConfig {
	return config.ScoringConfig{}.Resolve()
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestScoreEarlyExploration(t *testing.T) {
	s := New(defaultCtx())
	song := catalogue.Song{Touches: 3, Listens: 2, Skips: 1, Loved: false}

	got := s.Score(song)
	if !almostEqual(got, 7.0, 0.0001) {
		t.Errorf("Score() = %v, want 7.0", got)
	}
}

func TestScoreStableRegimeClampsToZero(t *testing.T) {
	s := New(defaultCtx())
	song := catalogue.Song{Touches: 20, Listens: 5, Skips: 12, Loved: false}

	got := s.Score(song)
	if got != 0 {
		t.Errorf("Score() = %v, want 0.0", got)
	}
}

func TestScoreDampenedAndLoved(t *testing.T) {
	s := New(defaultCtx())
	song := catalogue.Song{Touches: 100, Listens: 60, Skips: 20, Loved: true}

	// touches (100) is past the default touch_threshold (30), so the
	// dampened regime applies: d = log_1.2(t+1), base = d*(L-S), loved
	// doubles it. Computed directly from the formula rather than a
	// hand-rounded constant, since the logarithm is sensitive to the
	// precision carried through by-hand.
	d := math.Log(101) / math.Log(1.2)
	want := d * float64(60-20) * 2.0

	got := s.Score(song)
	if !almostEqual(got, want, 0.01) {
		t.Errorf("Score() = %v, want ~%v", got, want)
	}
	if want < 2000 || want > 2050 {
		t.Errorf("sanity check failed: want %v should be in the low-2000s per the dampened regime", want)
	}
}

func TestScoreNonNegativeAndFinite(t *testing.T) {
	s := New(defaultCtx())
	cases := []catalogue.Song{
		{Touches: 0, Listens: 0, Skips: 0},
		{Touches: 1000, Listens: 0, Skips: 1000},
		{Touches: 1000, Listens: 1000, Skips: 0, Loved: true},
		{Touches: 29, Listens: 0, Skips: 100},
	}
	for _, song := range cases {
		got := s.Score(song)
		if got < 0 {
			t.Errorf("Score(%+v) = %v, want >= 0", song, got)
		}
		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Errorf("Score(%+v) = %v, want finite", song, got)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	song := catalogue.Song{Touches: 45, Listens: 10, Skips: 3, Loved: true}

	s1 := New(defaultCtx())
	a := s1.Score(song)
	b := s1.Score(song) // from cache

	s2 := New(defaultCtx())
	c := s2.Score(song) // fresh cache

	if a != b || b != c {
		t.Errorf("Score not deterministic: %v, %v, %v", a, b, c)
	}
}

func TestLovedDominance(t *testing.T) {
	s := New(defaultCtx())
	unloved := catalogue.Song{Touches: 10, Listens: 8, Skips: 1, Loved: false}
	loved := unloved
	loved.Loved = true

	us := s.Score(unloved)
	ls := s.Score(loved)

	if ls < us {
		t.Errorf("loved score %v should be >= unloved score %v", ls, us)
	}
	if us > 0 && ls <= us {
		t.Errorf("loved score %v should be strictly greater than unloved %v when base > 0", ls, us)
	}
}

func TestCacheInvalidatesOnMutation(t *testing.T) {
	s := New(defaultCtx())
	song := catalogue.Song{Touches: 10, Listens: 8, Skips: 1, Loved: false}

	before := s.Score(song)

	song.Loved = true
	after := s.Score(song)

	if before == after {
		t.Error("expected score to change once loved flips, since the fingerprint includes Loved")
	}
}

func TestConnectionWeighting(t *testing.T) {
	got := Weight(10.0, 5, 1.1)
	if !almostEqual(got, 108.10, 0.01) {
		t.Errorf("Weight() = %v, want ~108.10", got)
	}
}

func TestConnectionWeightingZeroCountReturnsBase(t *testing.T) {
	got := Weight(42.0, 0, 1.1)
	if got != 42.0 {
		t.Errorf("Weight() = %v, want 42.0 unchanged", got)
	}
}

func TestCacheClearsWhenBoundExceeded(t *testing.T) {
	s := New(defaultCtx())
	for i := 0; i < maxCacheEntries+10; i++ {
		s.Score(catalogue.Song{Touches: i, Listens: i, Skips: 0})
	}
	if len(s.cache) > maxCacheEntries {
		t.Errorf("cache grew to %d entries, want bounded by %d", len(s.cache), maxCacheEntries)
	}
}
