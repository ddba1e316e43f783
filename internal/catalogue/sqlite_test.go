package catalogue

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/fennec-audio/muse/internal/muserr"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()

	sdb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := sdb.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if err := initSchema(sdb); err != nil {
		t.Fatalf("initSchema: %v", err)
	}
	return &SQLite{db: sdb}
}

func TestInsertSongIdempotentOnPath(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	id1, err := c.InsertSong(ctx, "/music/a.flac", "Artist", "Album", "Title")
	if err != nil {
		t.Fatalf("InsertSong: %v", err)
	}
	id2, err := c.InsertSong(ctx, "/music/a.flac", "Artist", "Album", "Title")
	if err != nil {
		t.Fatalf("InsertSong (second): %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected idempotent insert to return same id, got %d and %d", id1, id2)
	}
}

func TestFindSongByIDNotFound(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()

	_, err := c.FindSongByID(context.Background(), 999)
	if !errors.Is(err, muserr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordTransitionIncrementsCount(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	a, _ := c.InsertSong(ctx, "/a.flac", "A", "Alb", "A")
	b, _ := c.InsertSong(ctx, "/b.flac", "B", "Alb", "B")

	for i := 0; i < 3; i++ {
		if err := c.RecordTransition(ctx, a, b); err != nil {
			t.Fatalf("RecordTransition: %v", err)
		}
	}

	edges, err := c.OutgoingEdges(ctx, a)
	if err != nil {
		t.Fatalf("OutgoingEdges: %v", err)
	}
	if len(edges) != 1 || edges[0].Count != 3 {
		t.Fatalf("expected single edge with count 3, got %+v", edges)
	}
}

func TestOutgoingEdgesSortedByCountThenID(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	seed, _ := c.InsertSong(ctx, "/seed.flac", "S", "Alb", "S")
	low, _ := c.InsertSong(ctx, "/low.flac", "L", "Alb", "L")
	high, _ := c.InsertSong(ctx, "/high.flac", "H", "Alb", "H")
	tie, _ := c.InsertSong(ctx, "/tie.flac", "T", "Alb", "T")

	mustTransition(t, c, seed, low, 1)
	mustTransition(t, c, seed, high, 5)
	mustTransition(t, c, seed, tie, 5)

	edges, err := c.OutgoingEdges(ctx, seed)
	if err != nil {
		t.Fatalf("OutgoingEdges: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
	// high and tie both have count 5; tie broken by song id ascending.
	wantFirst, wantSecond := high, tie
	if tie < high {
		wantFirst, wantSecond = tie, high
	}
	if edges[0].Song.ID != wantFirst || edges[1].Song.ID != wantSecond || edges[2].Song.ID != low {
		t.Errorf("unexpected order: %+v", edges)
	}
}

func mustTransition(t *testing.T, c *SQLite, from, to int64, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		if err := c.RecordTransition(context.Background(), from, to); err != nil {
			t.Fatalf("RecordTransition: %v", err)
		}
	}
}

func TestBumpCountersIndependentFlags(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	id, _ := c.InsertSong(ctx, "/a.flac", "A", "Alb", "A")

	if err := c.BumpCounters(ctx, id, Bumps{Touch: true}); err != nil {
		t.Fatalf("BumpCounters: %v", err)
	}
	if err := c.BumpCounters(ctx, id, Bumps{Listen: true, Skip: false}); err != nil {
		t.Fatalf("BumpCounters: %v", err)
	}

	s, err := c.FindSongByID(ctx, id)
	if err != nil {
		t.Fatalf("FindSongByID: %v", err)
	}
	if s.Touches != 1 || s.Listens != 1 || s.Skips != 0 {
		t.Errorf("unexpected counters: %+v", s)
	}
}

func TestFuzzyMatchPrecedence(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	// This song would match the literal substring "daft" directly.
	if _, err := c.InsertSong(ctx, "/dp/one.flac", "Daft Punk", "Discovery", "One More Time"); err != nil {
		t.Fatalf("InsertSong: %v", err)
	}

	s, err := c.FindSongByName(ctx, "daft")
	if err != nil {
		t.Fatalf("FindSongByName: %v", err)
	}
	if s.Artist != "Daft Punk" {
		t.Errorf("got artist %q, want Daft Punk", s.Artist)
	}
}

func TestFuzzyMatchArtistTitleSeparator(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	if _, err := c.InsertSong(ctx, "/x/song.flac", "Boards of Canada", "Geogaddi", "Julie and Candy"); err != nil {
		t.Fatalf("InsertSong: %v", err)
	}

	s, err := c.FindSongByName(ctx, "Boards of Canada - Julie")
	if err != nil {
		t.Fatalf("FindSongByName: %v", err)
	}
	if s.Title != "Julie and Candy" {
		t.Errorf("got title %q, want Julie and Candy", s.Title)
	}
}

func TestFuzzyMatchNotFound(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()

	_, err := c.FindSongByName(context.Background(), "nonexistent band")
	if !errors.Is(err, muserr.ErrSeedNotFound) {
		t.Errorf("expected ErrSeedNotFound, got %v", err)
	}
}

func TestRandomSongExcludesGiven(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	id, _ := c.InsertSong(ctx, "/only.flac", "A", "Alb", "A")

	_, err := c.RandomSong(ctx, map[int64]bool{id: true})
	if !errors.Is(err, muserr.ErrNotFound) {
		t.Errorf("expected ErrNotFound when all songs excluded, got %v", err)
	}
}

func TestRandomSongWithNonzeroStatsFallsBack(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	id, _ := c.InsertSong(ctx, "/untouched.flac", "A", "Alb", "A")

	s, err := c.RandomSongWithNonzeroStats(ctx, nil)
	if err != nil {
		t.Fatalf("RandomSongWithNonzeroStats: %v", err)
	}
	if s.ID != id {
		t.Errorf("expected fallback to the only song, got id %d", s.ID)
	}
}

func TestEdgeSelfLoopRejected(t *testing.T) {
	c := openTestDB(t)
	defer c.Close()
	ctx := context.Background()

	id, _ := c.InsertSong(ctx, "/a.flac", "A", "Alb", "A")

	if err := c.RecordTransition(ctx, id, id); err == nil {
		t.Error("expected self-loop transition to fail the CHECK constraint")
	}
}
