// Package tracker implements the BehaviorTracker: a single-threaded
// event loop that watches the player's currently playing song and
// turns "how far did the listener get" into listen/skip counters and
// transition edges in the catalogue.
package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/mpdplayer"
	"github.com/fennec-audio/muse/internal/muselog"
	"github.com/fennec-audio/muse/internal/muserr"
	"github.com/fennec-audio/muse/internal/pathmapper"
)

// listenRatio and related thresholds are injected via config.TrackerConfig
// (see New) rather than hardcoded, but the finalization algorithm itself
// is fixed by the behavior contract below.

// PlayerAdapter is the subset of the player adapter the tracker drives.
type PlayerAdapter interface {
	Status(ctx context.Context) (mpdplayer.Status, error)
	Idle(ctx context.Context, subsystem string) error
}

// PlayingState mirrors the episode currently being watched.
type PlayingState struct {
	RelativePath   string
	SongID         int64
	StartInstant   time.Time
	Duration       *time.Duration
	TouchesTracked bool
}

// Config carries the tunable thresholds from config.TrackerConfig,
// already resolved to their defaults.
type Config struct {
	ListenRatio       float64
	MinListenSeconds  float64
	TouchDelaySeconds float64
	RetryDelaySeconds float64
}

// Tracker is the BehaviorTracker (C6). It is not safe for concurrent
// use by design: exactly one tracker drives the event loop.
type Tracker struct {
	player  PlayerAdapter
	cat     catalogue.Catalogue
	mapper  *pathmapper.Mapper
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time
	state   *PlayingState
	notify  func(msg string)
}

// New builds a Tracker. notify receives human-readable touch
// notifications; pass nil to discard them.
func New(player PlayerAdapter, cat catalogue.Catalogue, mapper *pathmapper.Mapper, cfg Config, notify func(string)) *Tracker {
	if notify == nil {
		notify = func(string) {}
	}
	return &Tracker{
		player: player,
		cat:    cat,
		mapper: mapper,
		cfg:    cfg,
		log:    muselog.Component("tracker"),
		now:    time.Now,
		notify: notify,
	}
}

// Reconcile performs startup reconciliation (spec §4.6): if the player
// is already mid-playback of a known song, the tracker adopts that
// episode instead of waiting for the next idle event.
func (t *Tracker) Reconcile(ctx context.Context) error {
	st, err := t.player.Status(ctx)
	if err != nil {
		return err
	}
	if st.State != mpdplayer.StatePlay {
		return nil
	}
	return t.adopt(ctx, st, nil)
}

// Run blocks, alternating idle waits and status polls, until ctx is
// canceled. A non-"connection refused" error is logged and the loop
// retries after RetryDelaySeconds; a connection-refused error is fatal
// and returned to the caller.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.player.Idle(ctx, "player"); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if isConnectionRefused(err) {
				return muserr.Wrap(muserr.ErrPlayer, err)
			}
			t.log.Error().Err(err).Msg("idle wait failed, retrying")
			sleep(ctx, time.Duration(t.cfg.RetryDelaySeconds*float64(time.Second)))
			continue
		}

		st, err := t.player.Status(ctx)
		if err != nil {
			if isConnectionRefused(err) {
				return muserr.Wrap(muserr.ErrPlayer, err)
			}
			t.log.Error().Err(err).Msg("status poll failed, retrying")
			sleep(ctx, time.Duration(t.cfg.RetryDelaySeconds*float64(time.Second)))
			continue
		}

		if err := t.Observe(ctx, st); err != nil {
			t.log.Error().Err(err).Msg("observing status failed, retrying")
			sleep(ctx, time.Duration(t.cfg.RetryDelaySeconds*float64(time.Second)))
		}
	}
}

// Observe drives the 3-state machine from a single observed status.
func (t *Tracker) Observe(ctx context.Context, st mpdplayer.Status) error {
	switch st.State {
	case mpdplayer.StateStop:
		if t.state != nil {
			prev := t.state
			t.state = nil
			return t.finalize(ctx, prev, nil)
		}
		return nil

	case mpdplayer.StatePause:
		return nil

	case mpdplayer.StatePlay:
		if t.state == nil || t.state.RelativePath != st.CurrentRelative {
			return t.adopt(ctx, st, t.state)
		}
		return t.trackTouch(ctx, st)
	}
	return nil
}

// adopt finalizes prev (if any) as transitioning into st's song, then
// begins a new PlayingState for st — unless st's song isn't catalogued,
// in which case the tracker just stops tracking.
func (t *Tracker) adopt(ctx context.Context, st mpdplayer.Status, prev *PlayingState) error {
	if prev != nil {
		if err := t.finalize(ctx, prev, &st.CurrentRelative); err != nil {
			return err
		}
	}

	abs, err := t.mapper.ToAbsolute(ctx, st.CurrentRelative)
	if err != nil {
		t.state = nil
		return nil
	}
	song, err := t.cat.FindSongByPath(ctx, abs)
	if err != nil {
		if errors.Is(err, muserr.ErrNotFound) {
			t.state = nil
			return nil
		}
		return err
	}

	elapsed := time.Duration(st.ElapsedSeconds * float64(time.Second))
	var duration *time.Duration
	if st.HasDuration {
		d := time.Duration(st.DurationSeconds * float64(time.Second))
		duration = &d
	}

	t.state = &PlayingState{
		RelativePath:   st.CurrentRelative,
		SongID:         song.ID,
		StartInstant:   t.now().Add(-elapsed),
		Duration:       duration,
		TouchesTracked: elapsed > time.Duration(t.cfg.TouchDelaySeconds*float64(time.Second)),
	}
	return nil
}

// trackTouch bumps the touch counter the first time the same song has
// played past TouchDelaySeconds.
func (t *Tracker) trackTouch(ctx context.Context, st mpdplayer.Status) error {
	if t.state.TouchesTracked {
		return nil
	}
	if st.ElapsedSeconds < t.cfg.TouchDelaySeconds {
		return nil
	}
	if err := t.cat.BumpCounters(ctx, t.state.SongID, catalogue.Bumps{Touch: true}); err != nil {
		return err
	}
	t.state.TouchesTracked = true

	song, err := t.cat.FindSongByID(ctx, t.state.SongID)
	if err == nil {
		t.notify(notifyText(song))
	}
	return nil
}

// Classify reports whether playedSeconds of playback counts as a listen
// under cfg's thresholds (spec §4.6): ratio against duration when known,
// otherwise a flat floor. Exported so callers that classify synchronously
// from a single status read (e.g. the `next`/`skip` commands) share the
// exact same rule the tracker's episode finalization uses.
func Classify(playedSeconds float64, duration *time.Duration, cfg Config) bool {
	if duration != nil {
		return playedSeconds/duration.Seconds() > cfg.ListenRatio
	}
	return playedSeconds >= cfg.MinListenSeconds
}

// finalize classifies a completed PlayingState as listened or skipped
// and applies the corresponding counters and transition edge. next is
// the relative path of the song that followed, if any.
func (t *Tracker) finalize(ctx context.Context, s *PlayingState, next *string) error {
	played := t.now().Sub(s.StartInstant)
	listened := Classify(played.Seconds(), s.Duration, t.cfg)

	if !listened {
		return t.cat.BumpCounters(ctx, s.SongID, catalogue.Bumps{Skip: true})
	}

	if err := t.cat.BumpCounters(ctx, s.SongID, catalogue.Bumps{Listen: true}); err != nil {
		return err
	}

	if next == nil {
		return nil
	}
	abs, err := t.mapper.ToAbsolute(ctx, *next)
	if err != nil {
		return nil
	}
	nextSong, err := t.cat.FindSongByPath(ctx, abs)
	if err != nil {
		if errors.Is(err, muserr.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := t.cat.RecordTransition(ctx, s.SongID, nextSong.ID); err != nil {
		return err
	}
	return t.cat.BumpCounters(ctx, nextSong.ID, catalogue.Bumps{Touch: true})
}

// Current returns the episode currently being watched, or nil.
func (t *Tracker) Current() *PlayingState {
	return t.state
}

func notifyText(s catalogue.Song) string {
	return "now playing: " + s.Artist + " - " + s.Title
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused")
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
