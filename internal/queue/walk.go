package queue

import (
	"context"
	"sort"

	"github.com/fennec-audio/muse/internal/catalogue"
)

// walk follows the highest-weighted outgoing edge from startID,
// repeatedly, up to maxLen hops. visited is mutated in place and must
// already contain startID. The returned path excludes startID itself —
// callers that want it included prepend it themselves (spec §4.4.1).
func (e *Engine) walk(ctx context.Context, startID int64, maxLen int, visited map[int64]bool) ([]catalogue.Song, error) {
	var path []catalogue.Song
	current := startID

	for len(path) < maxLen {
		edges, err := e.cat.OutgoingEdges(ctx, current)
		if err != nil {
			return nil, err
		}

		candidate, ok := bestUnvisited(e, edges, visited)
		if !ok {
			break
		}
		if e.bareScore(candidate.Song) == 0 {
			break
		}

		path = append(path, candidate.Song)
		visited[candidate.Song.ID] = true
		current = candidate.Song.ID
	}

	return path, nil
}

// bestUnvisited picks the highest-weighted edge whose target isn't in
// visited, ties broken by lower song id.
func bestUnvisited(e *Engine, edges []catalogue.WeightedSong, visited map[int64]bool) (catalogue.WeightedSong, bool) {
	var candidates []catalogue.WeightedSong
	for _, edge := range edges {
		if !visited[edge.Song.ID] {
			candidates = append(candidates, edge)
		}
	}
	if len(candidates) == 0 {
		return catalogue.WeightedSong{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		wi := e.weightedScore(candidates[i].Song, candidates[i].Count)
		wj := e.weightedScore(candidates[j].Song, candidates[j].Count)
		if wi != wj {
			return wi > wj
		}
		return candidates[i].Song.ID < candidates[j].Song.ID
	})
	return candidates[0], true
}
