package catalogue

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/fennec-audio/muse/internal/muserr"
)

// Mock is an in-memory Catalogue for tests that don't need a real
// SQLite file on disk.
type Mock struct {
	mu      sync.Mutex
	nextID  int64
	songs   map[int64]Song
	byPath  map[string]int64
	edges   map[int64]map[int64]int // fromID -> toID -> count
	closed  bool
}

// NewMock creates an empty mock catalogue.
func NewMock() *Mock {
	return &Mock{
		songs:  make(map[int64]Song),
		byPath: make(map[string]int64),
		edges:  make(map[int64]map[int64]int),
	}
}

// Seed inserts a fully-formed song (including counters) directly,
// bypassing InsertSong's idempotent-on-path semantics. Returns the id
// the mock assigned.
func (m *Mock) Seed(s Song) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	s.ID = m.nextID
	m.songs[s.ID] = s
	m.byPath[s.Path] = s.ID
	return s.ID
}

// SeedEdge inserts an edge directly with the given count.
func (m *Mock) SeedEdge(fromID, toID int64, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges[fromID] == nil {
		m.edges[fromID] = make(map[int64]int)
	}
	m.edges[fromID][toID] = count
}

func (m *Mock) InsertSong(_ context.Context, path, artist, album, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byPath[path]; ok {
		return id, nil
	}
	m.nextID++
	s := Song{ID: m.nextID, Path: path, Artist: artist, Album: album, Title: title}
	m.songs[s.ID] = s
	m.byPath[path] = s.ID
	return s.ID, nil
}

func (m *Mock) FindSongByID(_ context.Context, id int64) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.songs[id]
	if !ok {
		return Song{}, muserr.ErrNotFound
	}
	return s, nil
}

func (m *Mock) FindSongByPath(_ context.Context, path string) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byPath[path]
	if !ok {
		return Song{}, muserr.ErrNotFound
	}
	return m.songs[id], nil
}

func (m *Mock) FindSongByName(_ context.Context, query string) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.findLiteral(query); ok {
		return s, nil
	}
	if idx := strings.Index(query, " - "); idx >= 0 {
		if s, ok := m.findArtistTitle(query[:idx], query[idx+3:]); ok {
			return s, nil
		}
	}
	words := strings.Fields(query)
	if len(words) >= 2 {
		if s, ok := m.findMultiWord(words[0], words[1]); ok {
			return s, nil
		}
	}
	return Song{}, muserr.ErrSeedNotFound
}

func (m *Mock) findLiteral(query string) (Song, bool) {
	q := strings.ToLower(query)
	for _, id := range m.orderedIDs() {
		s := m.songs[id]
		if strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Artist), q) ||
			strings.Contains(strings.ToLower(s.Album), q) {
			return s, true
		}
	}
	return Song{}, false
}

func (m *Mock) findArtistTitle(artist, title string) (Song, bool) {
	a, ti := strings.ToLower(artist), strings.ToLower(title)
	for _, id := range m.orderedIDs() {
		s := m.songs[id]
		if strings.Contains(strings.ToLower(s.Artist), a) && strings.Contains(strings.ToLower(s.Title), ti) {
			return s, true
		}
	}
	return Song{}, false
}

func (m *Mock) findMultiWord(a, b string) (Song, bool) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	matches := func(s Song, w string) bool {
		return strings.Contains(strings.ToLower(s.Title), w) ||
			strings.Contains(strings.ToLower(s.Artist), w) ||
			strings.Contains(strings.ToLower(s.Album), w)
	}
	for _, id := range m.orderedIDs() {
		s := m.songs[id]
		if matches(s, la) && matches(s, lb) {
			return s, true
		}
	}
	return Song{}, false
}

func (m *Mock) orderedIDs() []int64 {
	ids := make([]int64, 0, len(m.songs))
	for id := range m.songs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Mock) OutgoingEdges(ctx context.Context, id int64) ([]WeightedSong, error) {
	return m.outgoingEdges(id, -1)
}

func (m *Mock) TopOutgoing(_ context.Context, id int64, n int) ([]WeightedSong, error) {
	return m.outgoingEdges(id, n)
}

func (m *Mock) outgoingEdges(id int64, limit int) ([]WeightedSong, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	targets := m.edges[id]
	out := make([]WeightedSong, 0, len(targets))
	for toID, count := range targets {
		out = append(out, WeightedSong{Song: m.songs[toID], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Song.ID < out[j].Song.ID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Mock) BumpCounters(_ context.Context, id int64, b Bumps) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.songs[id]
	if !ok {
		return muserr.ErrNotFound
	}
	if b.Touch {
		s.Touches++
	}
	if b.Listen {
		s.Listens++
	}
	if b.Skip {
		s.Skips++
	}
	m.songs[id] = s
	return nil
}

func (m *Mock) SetLoved(_ context.Context, id int64, loved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.songs[id]
	if !ok {
		return muserr.ErrNotFound
	}
	s.Loved = loved
	m.songs[id] = s
	return nil
}

func (m *Mock) RecordTransition(_ context.Context, fromID, toID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges[fromID] == nil {
		m.edges[fromID] = make(map[int64]int)
	}
	m.edges[fromID][toID]++
	return nil
}

func (m *Mock) RandomSong(_ context.Context, excluding map[int64]bool) (Song, error) {
	return m.randomSong(excluding, false)
}

func (m *Mock) RandomSongWithNonzeroStats(_ context.Context, excluding map[int64]bool) (Song, error) {
	s, err := m.randomSong(excluding, true)
	if err == nil {
		return s, nil
	}
	return m.randomSong(excluding, false)
}

func (m *Mock) randomSong(excluding map[int64]bool, nonzeroOnly bool) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var eligible []Song
	for _, id := range m.orderedIDs() {
		s := m.songs[id]
		if excluding[id] {
			continue
		}
		if nonzeroOnly && s.Listens+s.Skips == 0 {
			continue
		}
		eligible = append(eligible, s)
	}
	if len(eligible) == 0 {
		return Song{}, muserr.ErrNotFound
	}
	return eligible[rand.Intn(len(eligible))], nil
}

func (m *Mock) AllSongs(_ context.Context) ([]Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Song, 0, len(m.songs))
	for _, id := range m.orderedIDs() {
		out = append(out, m.songs[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called, for tests asserting
// cleanup happened.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
