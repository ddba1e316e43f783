// Package engine is the application-service layer: the single place
// that sequences the Catalogue, PathMapper, Scorer, QueueEngine,
// PlayerAdapter, BehaviorTracker, and ProcessSupervisor for a given
// command. cmd/muse stays a thin cobra front end that only parses
// flags and calls into here.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/mpdplayer"
	"github.com/fennec-audio/muse/internal/muselog"
	"github.com/fennec-audio/muse/internal/muserr"
	"github.com/fennec-audio/muse/internal/pathmapper"
	"github.com/fennec-audio/muse/internal/playeradapter"
	"github.com/fennec-audio/muse/internal/queue"
	"github.com/fennec-audio/muse/internal/scorer"
	"github.com/fennec-audio/muse/internal/supervisor"
	"github.com/fennec-audio/muse/internal/tracker"
)

// Engine wires together every core component for one CLI invocation or
// one daemon run.
type Engine struct {
	Catalogue  catalogue.Catalogue
	Mapper     *pathmapper.Mapper
	Scorer     *scorer.Scorer
	Queue      *queue.Engine
	Player     *playeradapter.Adapter
	Tracker    *tracker.Tracker
	Supervisor *supervisor.Supervisor

	// TrackerCfg is the BehaviorTracker's classification thresholds,
	// always populated (independent of whether Tracker itself is set)
	// so the foreground `next`/`skip` commands can classify and record
	// synchronously against a single status read, without a running
	// daemon in the loop.
	TrackerCfg tracker.Config

	log zerolog.Logger
}

// New assembles an Engine from its already-constructed components.
// Tracker and Supervisor may be nil for commands that don't need them
// (e.g. a one-shot `current` invocation never touches the daemon).
func New(cat catalogue.Catalogue, mapper *pathmapper.Mapper, sc *scorer.Scorer, q *queue.Engine, player *playeradapter.Adapter, tr *tracker.Tracker, sup *supervisor.Supervisor, trackerCfg tracker.Config) *Engine {
	return &Engine{
		Catalogue:  cat,
		Mapper:     mapper,
		Scorer:     sc,
		Queue:      q,
		Player:     player,
		Tracker:    tr,
		Supervisor: sup,
		TrackerCfg: trackerCfg,
		log:        muselog.Component("engine"),
	}
}

// loadAndPlay translates songs to player-relative paths and hands them
// to the player adapter.
func (e *Engine) loadAndPlay(ctx context.Context, songs []catalogue.Song) error {
	relatives := make([]string, 0, len(songs))
	for _, s := range songs {
		rel, err := e.Mapper.ToPlayer(ctx, s.Path)
		if err != nil {
			e.log.Warn().Err(err).Str("path", s.Path).Msg("skipping song outside the player's music root")
			continue
		}
		relatives = append(relatives, rel)
	}

	result, err := e.Player.LoadQueue(ctx, relatives)
	if err != nil {
		return err
	}
	for path, failErr := range result.Failed {
		e.log.Warn().Err(failErr).Str("path", path).Msg("player rejected a track")
	}
	e.Queue.Touch(ctx, songs)
	return nil
}

// PlayAlgorithm loads every catalogued song ranked by score descending,
// then plays.
func (e *Engine) PlayAlgorithm(ctx context.Context) error {
	songs, err := e.Catalogue.AllSongs(ctx)
	if err != nil {
		return err
	}
	sort.SliceStable(songs, func(i, j int) bool {
		return e.Scorer.Score(songs[i]) > e.Scorer.Score(songs[j])
	})
	return e.loadAndPlay(ctx, songs)
}

// PlayShuffle loads every catalogued song in random order, then plays.
func (e *Engine) PlayShuffle(ctx context.Context) error {
	songs, err := e.Catalogue.AllSongs(ctx)
	if err != nil {
		return err
	}
	rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
	return e.loadAndPlay(ctx, songs)
}

// Current builds, loads, and plays the Current queue for seedQuery.
func (e *Engine) Current(ctx context.Context, seedQuery string) (queue.Queue, error) {
	q, err := e.Queue.BuildCurrent(ctx, seedQuery)
	if err != nil {
		return queue.Queue{}, err
	}
	return q, e.loadAndPlay(ctx, q.Songs)
}

// Thread builds, loads, and plays the Thread queue for seedQuery.
func (e *Engine) Thread(ctx context.Context, seedQuery string) (queue.Queue, error) {
	q, err := e.Queue.BuildThread(ctx, seedQuery)
	if err != nil {
		return queue.Queue{}, err
	}
	return q, e.loadAndPlay(ctx, q.Songs)
}

// Stream builds, loads, and plays the Stream queue for seedQuery.
func (e *Engine) Stream(ctx context.Context, seedQuery string) (queue.Queue, error) {
	q, err := e.Queue.BuildStream(ctx, seedQuery)
	if err != nil {
		return queue.Queue{}, err
	}
	return q, e.loadAndPlay(ctx, q.Songs)
}

// Next is the `next` command: read the player's status for the song
// about to be abandoned, classify it by the ordinary listen/skip ratio,
// advance the player, then record the classification — and, on a
// listen, the transition into whatever plays next — against the
// catalogue. This runs synchronously from a single status read rather
// than depending on the daemon's in-memory Tracker state, which a
// foreground invocation never has (spec §6: "classify current, then
// advance"; ground-truth original `next_with_tracking`,
// `_examples/original_source/src/mpd_client.rs:775-814`).
func (e *Engine) Next(ctx context.Context) error {
	song, status, err := e.currentSongAndStatus(ctx)
	if err != nil && !errors.Is(err, muserr.ErrNotFound) {
		return err
	}
	tracked := err == nil
	var listened bool
	if tracked {
		listened = tracker.Classify(status.ElapsedSeconds, durationOf(status), e.TrackerCfg)
	}

	if err := e.Player.Next(ctx); err != nil {
		return err
	}
	if !tracked {
		return nil
	}

	if !listened {
		return e.Catalogue.BumpCounters(ctx, song.ID, catalogue.Bumps{Skip: true})
	}
	if err := e.Catalogue.BumpCounters(ctx, song.ID, catalogue.Bumps{Listen: true}); err != nil {
		return err
	}

	next, err := e.currentSong(ctx)
	if err != nil {
		if errors.Is(err, muserr.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := e.Catalogue.RecordTransition(ctx, song.ID, next.ID); err != nil {
		return err
	}
	return e.Catalogue.BumpCounters(ctx, next.ID, catalogue.Bumps{Touch: true})
}

// Skip is the unconditional `skip` command: always record a skip for
// the currently playing episode, regardless of how far it got, then
// advance. No transition is recorded — the user rejected the song, not
// chose a transition out of it (spec §6; ground-truth original
// `skip_with_tracking`, `_examples/original_source/src/mpd_client.rs:860-888`).
func (e *Engine) Skip(ctx context.Context) error {
	song, err := e.currentSong(ctx)
	if err != nil && !errors.Is(err, muserr.ErrNotFound) {
		return err
	}
	tracked := err == nil

	if err := e.Player.Next(ctx); err != nil {
		return err
	}
	if !tracked {
		return nil
	}
	return e.Catalogue.BumpCounters(ctx, song.ID, catalogue.Bumps{Skip: true})
}

// durationOf extracts st's duration as the *time.Duration tracker.Classify
// expects, or nil when the player reported no duration.
func durationOf(st mpdplayer.Status) *time.Duration {
	if !st.HasDuration {
		return nil
	}
	d := time.Duration(st.DurationSeconds * float64(time.Second))
	return &d
}

// currentSong resolves the player's status to a catalogued Song.
func (e *Engine) currentSong(ctx context.Context) (catalogue.Song, error) {
	song, _, err := e.currentSongAndStatus(ctx)
	return song, err
}

// currentSongAndStatus resolves the player's status to a catalogued Song,
// returning the status alongside it for callers (Next) that also need the
// elapsed/duration fields to classify the episode before advancing.
func (e *Engine) currentSongAndStatus(ctx context.Context) (catalogue.Song, mpdplayer.Status, error) {
	st, err := e.Player.Status(ctx)
	if err != nil {
		return catalogue.Song{}, mpdplayer.Status{}, err
	}
	if st.CurrentRelative == "" {
		return catalogue.Song{}, st, muserr.ErrNotFound
	}
	abs, err := e.Mapper.ToAbsolute(ctx, st.CurrentRelative)
	if err != nil {
		return catalogue.Song{}, st, err
	}
	song, err := e.Catalogue.FindSongByPath(ctx, abs)
	return song, st, err
}

// Love marks the currently playing song as loved.
func (e *Engine) Love(ctx context.Context) error {
	song, err := e.currentSong(ctx)
	if err != nil {
		return err
	}
	return e.Catalogue.SetLoved(ctx, song.ID, true)
}

// Unlove clears the loved flag on the currently playing song.
func (e *Engine) Unlove(ctx context.Context) error {
	song, err := e.currentSong(ctx)
	if err != nil {
		return err
	}
	return e.Catalogue.SetLoved(ctx, song.ID, false)
}

// Info is the `info` command's result: the currently playing song's
// stats, its score, and its top outgoing edges.
type Info struct {
	Song        catalogue.Song
	Score       float64
	TopOutgoing []catalogue.WeightedSong
}

// infoTopOutgoingCount is how many outgoing edges `info` reports.
const infoTopOutgoingCount = 5

// Info reports the currently playing song's stats, score, and top 5
// outgoing edges.
func (e *Engine) Info(ctx context.Context) (Info, error) {
	song, err := e.currentSong(ctx)
	if err != nil {
		return Info{}, err
	}
	top, err := e.Catalogue.TopOutgoing(ctx, song.ID, infoTopOutgoingCount)
	if err != nil {
		return Info{}, err
	}
	return Info{Song: song, Score: e.Scorer.Score(song), TopOutgoing: top}, nil
}

// DaemonStart spawns the tracker daemon unless one is already running.
func (e *Engine) DaemonStart(binary string, args []string) (alreadyRunning bool, err error) {
	return e.Supervisor.Start(binary, args)
}

// DaemonStop signals the running tracker daemon to terminate.
func (e *Engine) DaemonStop() error {
	return e.Supervisor.Stop()
}

// DaemonStatus reports whether the tracker daemon is running.
func (e *Engine) DaemonStatus() (running bool, pid int, err error) {
	return e.Supervisor.Status()
}
