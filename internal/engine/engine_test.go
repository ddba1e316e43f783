package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/config"
	"github.com/fennec-audio/muse/internal/mpdplayer"
	"github.com/fennec-audio/muse/internal/muserr"
	"github.com/fennec-audio/muse/internal/pathmapper"
	"github.com/fennec-audio/muse/internal/playeradapter"
	"github.com/fennec-audio/muse/internal/queue"
	"github.com/fennec-audio/muse/internal/scorer"
	"github.com/fennec-audio/muse/internal/tracker"
)

// harness wires a mock catalogue, a config-file-rooted mapper, a mock
// player, and a queue engine, seeding two songs with an edge between
// them so Current/Thread/Stream all have something to traverse.
func harness(t *testing.T) (*Engine, *catalogue.Mock, *mpdplayer.Mock, int64, int64) {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"a.flac", "b.flac"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	cfgPath := filepath.Join(t.TempDir(), "mpd.conf")
	if err := os.WriteFile(cfgPath, []byte(`music_directory "`+root+`"`), 0o644); err != nil {
		t.Fatalf("WriteFile config: %v", err)
	}

	cat := catalogue.NewMock()
	aID := cat.Seed(catalogue.Song{Path: filepath.Join(root, "a.flac"), Artist: "A", Album: "Alb", Title: "Song A", Touches: 50, Listens: 10})
	bID := cat.Seed(catalogue.Song{Path: filepath.Join(root, "b.flac"), Artist: "B", Album: "Alb", Title: "Song B", Touches: 50, Listens: 10})
	cat.SeedEdge(aID, bID, 1)

	mapper := pathmapper.New([]string{cfgPath}, nil, cat)
	sc := scorer.New(config.ScoringConfig{}.Resolve())
	qe := queue.New(cat, sc, config.QueueConfig{}.Resolve(), 1.1)
	player := mpdplayer.NewMock()
	adapter := playeradapter.New(player)

	trackerCfg := tracker.Config{ListenRatio: 0.8, MinListenSeconds: 30, TouchDelaySeconds: 3, RetryDelaySeconds: 1}
	e := New(cat, mapper, sc, qe, adapter, nil, nil, trackerCfg)
	return e, cat, player, aID, bID
}

func TestCurrentLoadsAndPlays(t *testing.T) {
	e, _, player, _, _ := harness(t)

	q, err := e.Current(context.Background(), "Song A")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(q.Songs) == 0 {
		t.Fatal("expected a non-empty queue")
	}
	if !player.Playing {
		t.Error("expected playback to have started")
	}
	if len(player.Queue) == 0 {
		t.Error("expected the player to have received tracks")
	}
}

func TestPlayAlgorithmRanksByScoreDescending(t *testing.T) {
	e, cat, player, _, bID := harness(t)
	// Love b so its score outranks a, and verify it loads first.
	if err := cat.SetLoved(context.Background(), bID, true); err != nil {
		t.Fatalf("SetLoved: %v", err)
	}

	if err := e.PlayAlgorithm(context.Background()); err != nil {
		t.Fatalf("PlayAlgorithm: %v", err)
	}
	if len(player.Queue) != 2 {
		t.Fatalf("len(queue) = %d, want 2", len(player.Queue))
	}
	if player.Queue[0] != "b.flac" {
		t.Errorf("queue[0] = %q, want b.flac (loved, higher score)", player.Queue[0])
	}
}

func TestPlayShuffleLoadsEverySong(t *testing.T) {
	e, _, player, _, _ := harness(t)

	if err := e.PlayShuffle(context.Background()); err != nil {
		t.Fatalf("PlayShuffle: %v", err)
	}
	if len(player.Queue) != 2 {
		t.Errorf("len(queue) = %d, want 2", len(player.Queue))
	}
}

func TestLoveAndUnloveTargetCurrentSong(t *testing.T) {
	e, cat, player, aID, _ := harness(t)
	player.StatusFn = func() (mpdplayer.Status, error) {
		return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "a.flac"}, nil
	}

	if err := e.Love(context.Background()); err != nil {
		t.Fatalf("Love: %v", err)
	}
	song, _ := cat.FindSongByID(context.Background(), aID)
	if !song.Loved {
		t.Error("expected a.flac to be loved")
	}

	if err := e.Unlove(context.Background()); err != nil {
		t.Fatalf("Unlove: %v", err)
	}
	song, _ = cat.FindSongByID(context.Background(), aID)
	if song.Loved {
		t.Error("expected a.flac to no longer be loved")
	}
}

func TestInfoReportsScoreAndTopOutgoing(t *testing.T) {
	e, _, player, _, bID := harness(t)
	player.StatusFn = func() (mpdplayer.Status, error) {
		return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "a.flac"}, nil
	}

	info, err := e.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Song.Title != "Song A" {
		t.Errorf("Song = %+v, want Song A", info.Song)
	}
	if len(info.TopOutgoing) != 1 || info.TopOutgoing[0].Song.ID != bID {
		t.Errorf("TopOutgoing = %+v, want a single edge to b", info.TopOutgoing)
	}
}

func TestInfoFailsWhenNothingPlaying(t *testing.T) {
	e, _, player, _, _ := harness(t)
	player.StatusFn = func() (mpdplayer.Status, error) {
		return mpdplayer.Status{State: mpdplayer.StateStop}, nil
	}

	_, err := e.Info(context.Background())
	if !errors.Is(err, muserr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNextAndSkipAdvanceWithNothingPlaying(t *testing.T) {
	e, _, player, _, _ := harness(t)

	if err := e.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := e.Skip(context.Background()); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if player.NextCalls != 2 {
		t.Errorf("NextCalls = %d, want 2", player.NextCalls)
	}
}

// TestNextRecordsListenAndTransitionWithoutATracker exercises the
// foreground `next` command with Engine.Tracker nil (as cmd/muse builds
// it): Next must classify and record synchronously from a single status
// read rather than relying on in-memory tracker state only a running
// daemon holds.
func TestNextRecordsListenAndTransitionWithoutATracker(t *testing.T) {
	e, cat, player, aID, bID := harness(t)
	if e.Tracker != nil {
		t.Fatal("harness should build an engine with a nil Tracker")
	}

	player.StatusFn = func() (mpdplayer.Status, error) {
		if player.NextCalls == 0 {
			return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "a.flac",
				ElapsedSeconds: 290, DurationSeconds: 300, HasDuration: true}, nil
		}
		return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "b.flac"}, nil
	}

	if err := e.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if player.NextCalls != 1 {
		t.Fatalf("NextCalls = %d, want 1", player.NextCalls)
	}

	a, _ := cat.FindSongByID(context.Background(), aID)
	if a.Listens != 11 {
		t.Errorf("a.Listens = %d, want 11", a.Listens)
	}
	if a.Skips != 0 {
		t.Errorf("a.Skips = %d, want 0", a.Skips)
	}

	b, _ := cat.FindSongByID(context.Background(), bID)
	if b.Touches != 51 {
		t.Errorf("b.Touches = %d, want 51", b.Touches)
	}

	edges, _ := cat.OutgoingEdges(context.Background(), aID)
	if len(edges) != 1 || edges[0].Song.ID != bID || edges[0].Count != 2 {
		t.Errorf("edges = %+v, want a single a->b edge with count 2", edges)
	}
}

// TestNextRecordsSkipWithoutATracker exercises Next's skip branch: played
// well under the ratio, so the episode is a skip and no transition edge
// is recorded even though a next song follows.
func TestNextRecordsSkipWithoutATracker(t *testing.T) {
	e, cat, player, aID, bID := harness(t)

	player.StatusFn = func() (mpdplayer.Status, error) {
		if player.NextCalls == 0 {
			return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "a.flac",
				ElapsedSeconds: 10, DurationSeconds: 300, HasDuration: true}, nil
		}
		return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "b.flac"}, nil
	}

	if err := e.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	a, _ := cat.FindSongByID(context.Background(), aID)
	if a.Skips != 1 {
		t.Errorf("a.Skips = %d, want 1", a.Skips)
	}
	if a.Listens != 10 {
		t.Errorf("a.Listens = %d, want unchanged at 10", a.Listens)
	}

	edges, _ := cat.OutgoingEdges(context.Background(), aID)
	if len(edges) != 1 || edges[0].Count != 1 {
		t.Errorf("edges = %+v, want the seeded a->b edge unchanged at count 1", edges)
	}
}

// TestSkipAlwaysRecordsSkipWithoutATracker exercises the unconditional
// `skip` command: even a nearly-complete playback is recorded as a skip,
// and no transition edge is created.
func TestSkipAlwaysRecordsSkipWithoutATracker(t *testing.T) {
	e, cat, player, aID, _ := harness(t)

	player.StatusFn = func() (mpdplayer.Status, error) {
		return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "a.flac",
			ElapsedSeconds: 295, DurationSeconds: 300, HasDuration: true}, nil
	}

	if err := e.Skip(context.Background()); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if player.NextCalls != 1 {
		t.Fatalf("NextCalls = %d, want 1", player.NextCalls)
	}

	a, _ := cat.FindSongByID(context.Background(), aID)
	if a.Skips != 1 {
		t.Errorf("a.Skips = %d, want 1", a.Skips)
	}
	if a.Listens != 10 {
		t.Errorf("a.Listens = %d, want unchanged at 10", a.Listens)
	}

	edges, _ := cat.OutgoingEdges(context.Background(), aID)
	if len(edges) != 1 || edges[0].Count != 1 {
		t.Errorf("edges = %+v, want the seeded a->b edge unchanged at count 1", edges)
	}
}
