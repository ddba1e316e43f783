package queue

import (
	"context"
	"errors"
	"math/rand"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/muserr"
)

// BuildCurrent builds the dual-path interleave queue (spec §4.4.2).
func (e *Engine) BuildCurrent(ctx context.Context, seedQuery string) (Queue, error) {
	seed, err := e.seed(ctx, seedQuery)
	if err != nil {
		return Queue{}, err
	}

	edges, err := e.cat.OutgoingEdges(ctx, seed.ID)
	if err != nil {
		return Queue{}, err
	}
	anchors := topWeighted(e, edges, 2)

	var paths [][]catalogue.Song
	for _, anchor := range anchors {
		visited := map[int64]bool{seed.ID: true, anchor.Song.ID: true}
		path, err := e.walk(ctx, anchor.Song.ID, currentAnchorWalkLen, visited)
		if err != nil {
			return Queue{}, err
		}
		paths = append(paths, path)
	}

	body := interleave(paths)
	songs := append([]catalogue.Song{seed}, body...)

	if len(songs) > e.cfg.MaxLength {
		songs = songs[:e.cfg.MaxLength]
	}

	songs, err = e.extend(ctx, songs)
	if err != nil {
		return Queue{}, err
	}

	return withDiversityGuard(songs, e.cfg.DiversityFactor), nil
}

// interleave merges paths by round-robin, skipping exhausted ones.
func interleave(paths [][]catalogue.Song) []catalogue.Song {
	var out []catalogue.Song
	for i := 0; ; i++ {
		any := false
		for _, p := range paths {
			if i < len(p) {
				out = append(out, p[i])
				any = true
			}
		}
		if !any {
			break
		}
	}
	return out
}

// BuildThread builds the single-path chain queue (spec §4.4.3).
func (e *Engine) BuildThread(ctx context.Context, seedQuery string) (Queue, error) {
	seed, err := e.seed(ctx, seedQuery)
	if err != nil {
		return Queue{}, err
	}

	visited := map[int64]bool{seed.ID: true}
	rest, err := e.walk(ctx, seed.ID, e.cfg.MaxLength-1, visited)
	if err != nil {
		return Queue{}, err
	}

	songs := append([]catalogue.Song{seed}, rest...)
	songs, err = e.extend(ctx, songs)
	if err != nil {
		return Queue{}, err
	}

	return withDiversityGuard(songs, e.cfg.DiversityFactor), nil
}

// BuildStream builds the exploratory random-walk queue (spec §4.4.4).
// Its target length is fixed at 30 regardless of QueueConfig.MaxLength.
func (e *Engine) BuildStream(ctx context.Context, seedQuery string) (Queue, error) {
	seed, err := e.seed(ctx, seedQuery)
	if err != nil {
		return Queue{}, err
	}

	visited := map[int64]bool{seed.ID: true}
	songs := []catalogue.Song{seed}
	tail := seed

	for len(songs) < streamTargetLength {
		next, ok, err := e.streamStep(ctx, tail, visited)
		if err != nil {
			return Queue{}, err
		}
		if !ok {
			fallback, err := e.cat.RandomSong(ctx, visited)
			if err != nil {
				if errors.Is(err, muserr.ErrNotFound) {
					break
				}
				return Queue{}, err
			}
			next = fallback
		}

		songs = append(songs, next)
		visited[next.ID] = true
		tail = next
	}

	return withDiversityGuard(songs, e.cfg.DiversityFactor), nil
}

// streamStep picks the next Stream hop from tail: exploration picks a
// uniformly random unvisited candidate, exploitation picks the highest
// bare-scored one. ok is false when fewer than 3 candidates exist, per
// spec §4.4.4, signaling the caller to fall back to a random song.
func (e *Engine) streamStep(ctx context.Context, tail catalogue.Song, visited map[int64]bool) (catalogue.Song, bool, error) {
	edges, err := e.cat.OutgoingEdges(ctx, tail.ID)
	if err != nil {
		return catalogue.Song{}, false, err
	}

	var candidates []catalogue.Song
	for _, edge := range edges {
		if !visited[edge.Song.ID] {
			candidates = append(candidates, edge.Song)
		}
	}
	if len(candidates) < 3 {
		return catalogue.Song{}, false, nil
	}

	if rand.Float64() < e.cfg.ExplorationRatio {
		return candidates[rand.Intn(len(candidates))], true, nil
	}

	best := candidates[0]
	bestScore := e.bareScore(best)
	for _, c := range candidates[1:] {
		if s := e.bareScore(c); s > bestScore || (s == bestScore && c.ID < best.ID) {
			best, bestScore = c, s
		}
	}
	return best, true, nil
}
