// Package queue builds the three ordered playlist shapes — Current,
// Thread, and Stream — by traversing the catalogue's connection graph
// from a seed song.
package queue

import (
	"context"
	"errors"
	"sort"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/config"
	"github.com/fennec-audio/muse/internal/muserr"
	"github.com/fennec-audio/muse/internal/scorer"
)

// streamTargetLength is Stream's fixed length; it overrides QueueConfig.MaxLength.
const streamTargetLength = 30

// currentAnchorWalkLen is how far each of Current's two anchor paths
// walks beyond the anchor itself.
const currentAnchorWalkLen = 4

// Queue is the result of a build: an ordered list of songs (element 0
// is always the seed) plus the advisory diversity guard's verdict.
type Queue struct {
	Songs            []catalogue.Song
	DiversityWarning bool
}

// Paths extracts the absolute catalogue paths in order. The player
// adapter is not handed these: it loads player-relative paths.
func (q Queue) Paths() []string {
	paths := make([]string, len(q.Songs))
	for i, s := range q.Songs {
		paths[i] = s.Path
	}
	return paths
}

// Engine builds queues against a Catalogue, scoring candidates with a
// Scorer bound to the same ScoringContext the catalogue's songs were
// counted under.
type Engine struct {
	cat              catalogue.Catalogue
	scorer           *scorer.Scorer
	cfg              config.QueueConfig
	correctionFactor float64
}

// New builds a queue Engine. correctionFactor is the Scorer.Weight
// tuning constant from ScoringConfig (spec §4.3's weight formula).
func New(cat catalogue.Catalogue, sc *scorer.Scorer, cfg config.QueueConfig, correctionFactor float64) *Engine {
	return &Engine{cat: cat, scorer: sc, cfg: cfg.Resolve(), correctionFactor: correctionFactor}
}

// Touch bumps the touch counter for every song in songs. Best-effort:
// an individual failure is swallowed so one bad bump doesn't abort a
// queue load (spec §4.4.6).
func (e *Engine) Touch(ctx context.Context, songs []catalogue.Song) {
	for _, s := range songs {
		_ = e.cat.BumpCounters(ctx, s.ID, catalogue.Bumps{Touch: true})
	}
}

func (e *Engine) seed(ctx context.Context, seedQuery string) (catalogue.Song, error) {
	return e.cat.FindSongByName(ctx, seedQuery)
}

// weightedScore scores song and applies connection weighting for the
// edge count it was reached by.
func (e *Engine) weightedScore(song catalogue.Song, edgeCount int) float64 {
	return scorer.Weight(e.scorer.Score(song), edgeCount, e.correctionFactor)
}

// bareScore is the song's unweighted score, used by walk's stop
// condition and Stream's exploitation step.
func (e *Engine) bareScore(song catalogue.Song) float64 {
	return e.scorer.Score(song)
}

// extend appends random, not-already-present songs until the queue
// reaches min_length, failing QueueTooShort if it can't.
func (e *Engine) extend(ctx context.Context, songs []catalogue.Song) ([]catalogue.Song, error) {
	if len(songs) >= e.cfg.MinLength {
		return songs, nil
	}

	excluding := idSet(songs)
	for len(songs) < e.cfg.MinLength {
		s, err := e.cat.RandomSong(ctx, excluding)
		if err != nil {
			if errors.Is(err, muserr.ErrNotFound) {
				break
			}
			return nil, err
		}
		songs = append(songs, s)
		excluding[s.ID] = true
	}

	if len(songs) < e.cfg.MinLength {
		return nil, muserr.ErrQueueTooShort
	}
	return songs, nil
}

func idSet(songs []catalogue.Song) map[int64]bool {
	set := make(map[int64]bool, len(songs))
	for _, s := range songs {
		set[s.ID] = true
	}
	return set
}

func withDiversityGuard(songs []catalogue.Song, diversityFactor float64) Queue {
	return Queue{Songs: songs, DiversityWarning: diversity(songs) < diversityFactor}
}

func diversity(songs []catalogue.Song) float64 {
	if len(songs) == 0 {
		return 0
	}
	artists := make(map[string]bool, len(songs))
	for _, s := range songs {
		artists[s.Artist] = true
	}
	return float64(len(artists)) / float64(len(songs))
}

// topWeighted selects the n highest-weighted candidates, ties broken by
// ascending song id.
func topWeighted(e *Engine, edges []catalogue.WeightedSong, n int) []catalogue.WeightedSong {
	scored := make([]catalogue.WeightedSong, len(edges))
	copy(scored, edges)
	sort.SliceStable(scored, func(i, j int) bool {
		wi := e.weightedScore(scored[i].Song, scored[i].Count)
		wj := e.weightedScore(scored[j].Song, scored[j].Count)
		if wi != wj {
			return wi > wj
		}
		return scored[i].Song.ID < scored[j].Song.ID
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
