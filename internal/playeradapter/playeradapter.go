// Package playeradapter wraps a transport-level PlayerControl with the
// load-queue semantics the rest of the engine depends on: clear, then
// append every track tolerating individual failures, then play only if
// at least one track made it onto the player's queue.
package playeradapter

import (
	"context"

	"github.com/fennec-audio/muse/internal/mpdplayer"
	"github.com/fennec-audio/muse/internal/muserr"
)

// PlayerControl is the transport contract PlayerAdapter drives. Both
// *mpdplayer.Client and *mpdplayer.Mock satisfy it.
type PlayerControl interface {
	Clear(ctx context.Context) error
	Append(ctx context.Context, relativePath string) error
	Play(ctx context.Context) error
	Next(ctx context.Context) error
	Status(ctx context.Context) (mpdplayer.Status, error)
	Idle(ctx context.Context, subsystem string) error
}

// LoadResult reports which relative paths failed to append, so the
// caller can log them without treating a partial load as fatal.
type LoadResult struct {
	Appended int
	Failed   map[string]error
}

// Adapter is the C5 PlayerAdapter: the one place the rest of muse talks
// to the player through.
type Adapter struct {
	player PlayerControl
}

// New wraps player as a PlayerAdapter.
func New(player PlayerControl) *Adapter {
	return &Adapter{player: player}
}

// LoadQueue clears the player's queue, appends every relative path,
// tolerating per-item failures, and starts playback if at least one
// item made it on. Zero successful appends is a hard failure.
func (a *Adapter) LoadQueue(ctx context.Context, relativePaths []string) (LoadResult, error) {
	if err := a.player.Clear(ctx); err != nil {
		return LoadResult{}, muserr.Wrap(muserr.ErrPlayer, err)
	}

	result := LoadResult{Failed: map[string]error{}}
	for _, p := range relativePaths {
		if err := a.player.Append(ctx, p); err != nil {
			result.Failed[p] = err
			continue
		}
		result.Appended++
	}

	if result.Appended == 0 {
		return result, muserr.Wrap(muserr.ErrPlayer, errNoItemsAppended)
	}

	if err := a.player.Play(ctx); err != nil {
		return result, muserr.Wrap(muserr.ErrPlayer, err)
	}
	return result, nil
}

// Status passes through the player's current status.
func (a *Adapter) Status(ctx context.Context) (mpdplayer.Status, error) {
	return a.player.Status(ctx)
}

// Next skips to the following track in the player's own queue.
func (a *Adapter) Next(ctx context.Context) error {
	return a.player.Next(ctx)
}

// Idle blocks until subsystem changes or ctx is canceled.
func (a *Adapter) Idle(ctx context.Context, subsystem string) error {
	return a.player.Idle(ctx, subsystem)
}

var errNoItemsAppended = playerError("load_queue: no items appended")

type playerError string

func (e playerError) Error() string { return string(e) }
