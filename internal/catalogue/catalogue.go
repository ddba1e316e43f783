// Package catalogue is the typed persistence layer for songs, their play
// counters, and the directed graph of observed transitions between them.
package catalogue

import "context"

// Song is one catalogued track. Everything but the counter fields and
// Loved is treated as immutable once inserted.
type Song struct {
	ID      int64
	Path    string
	Artist  string
	Album   string
	Title   string
	Touches int
	Listens int
	Skips   int
	Loved   bool
}

// Edge is a directed, aggregated transition observed from one song to
// another. Count is always >= 1; an edge with count 0 must not exist.
type Edge struct {
	FromID int64
	ToID   int64
	Count  int
}

// WeightedSong pairs a song reachable from some origin with the edge
// count that was observed for that transition.
type WeightedSong struct {
	Song  Song
	Count int
}

// Bumps selects which counters bump_counters should increment. Each set
// flag increments its counter by exactly one.
type Bumps struct {
	Touch bool
	Listen bool
	Skip  bool
}

// Catalogue is the storage contract every query and mutation in the
// engine goes through. Implementations must serialize writers: the
// store is a single-writer resource, not a concurrent one.
type Catalogue interface {
	// InsertSong is idempotent on Path: it returns the existing id if a
	// song with that path is already catalogued.
	InsertSong(ctx context.Context, path, artist, album, title string) (int64, error)

	FindSongByID(ctx context.Context, id int64) (Song, error)

	// FindSongByName applies the fuzzy match precedence described by
	// the queue engine's seed-matching rules. Returns ErrSeedNotFound
	// (via muserr) when nothing matches.
	FindSongByName(ctx context.Context, query string) (Song, error)

	// FindSongByPath looks up a song by its exact absolute path.
	// Returns muserr.ErrNotFound if absent.
	FindSongByPath(ctx context.Context, path string) (Song, error)

	// OutgoingEdges returns songs reachable from id in one hop, sorted
	// by count descending, ties broken by song id ascending.
	OutgoingEdges(ctx context.Context, id int64) ([]WeightedSong, error)

	// BumpCounters atomically increments the requested counters.
	BumpCounters(ctx context.Context, id int64, b Bumps) error

	SetLoved(ctx context.Context, id int64, loved bool) error

	// RecordTransition inserts a new edge with count=1 or increments an
	// existing one, atomically.
	RecordTransition(ctx context.Context, fromID, toID int64) error

	// RandomSong picks uniformly among catalogued songs not in
	// excluding. Returns muserr.ErrNotFound if none are eligible.
	RandomSong(ctx context.Context, excluding map[int64]bool) (Song, error)

	// RandomSongWithNonzeroStats restricts RandomSong to songs with
	// listens+skips > 0, falling back to RandomSong if none qualify.
	RandomSongWithNonzeroStats(ctx context.Context, excluding map[int64]bool) (Song, error)

	// AllSongs returns every catalogued song, ordered by path, for the
	// `list` and `play algorithm/shuffle` commands.
	AllSongs(ctx context.Context) ([]Song, error)

	// TopOutgoing returns the top-n outgoing edges of id for the `info`
	// command, sorted the same way as OutgoingEdges.
	TopOutgoing(ctx context.Context, id int64, n int) ([]WeightedSong, error)

	Close() error
}
