package playeradapter

import (
	"context"
	"errors"
	"testing"

	"github.com/fennec-audio/muse/internal/mpdplayer"
	"github.com/fennec-audio/muse/internal/muserr"
)

func TestLoadQueueClearsAppendsAndPlays(t *testing.T) {
	player := mpdplayer.NewMock()
	a := New(player)

	result, err := a.LoadQueue(context.Background(), []string{"a.flac", "b.flac", "c.flac"})
	if err != nil {
		t.Fatalf("LoadQueue: %v", err)
	}
	if result.Appended != 3 {
		t.Errorf("Appended = %d, want 3", result.Appended)
	}
	if player.ClearCalls != 1 {
		t.Errorf("ClearCalls = %d, want 1", player.ClearCalls)
	}
	if !player.Playing {
		t.Error("expected playback to have started")
	}
}

func TestLoadQueueTakesPartialFailuresButStillPlays(t *testing.T) {
	player := mpdplayer.NewMock()
	player.AppendErrOn["bad.flac"] = errors.New("no such file")
	a := New(player)

	result, err := a.LoadQueue(context.Background(), []string{"good.flac", "bad.flac"})
	if err != nil {
		t.Fatalf("LoadQueue: %v", err)
	}
	if result.Appended != 1 {
		t.Errorf("Appended = %d, want 1", result.Appended)
	}
	if _, failed := result.Failed["bad.flac"]; !failed {
		t.Error("expected bad.flac to be recorded as failed")
	}
	if !player.Playing {
		t.Error("one successful append should still start playback")
	}
}

func TestLoadQueueFailsWhenNothingAppended(t *testing.T) {
	player := mpdplayer.NewMock()
	player.AppendErrOn["only.flac"] = errors.New("no such file")
	a := New(player)

	_, err := a.LoadQueue(context.Background(), []string{"only.flac"})
	if !errors.Is(err, muserr.ErrPlayer) {
		t.Errorf("expected ErrPlayer, got %v", err)
	}
	if player.Playing {
		t.Error("must not start playback with an empty queue")
	}
}

func TestStatusAndNextPassThrough(t *testing.T) {
	player := mpdplayer.NewMock()
	player.StatusFn = func() (mpdplayer.Status, error) {
		return mpdplayer.Status{State: mpdplayer.StatePlay, CurrentRelative: "x.flac"}, nil
	}
	a := New(player)

	st, err := a.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.CurrentRelative != "x.flac" {
		t.Errorf("CurrentRelative = %q, want x.flac", st.CurrentRelative)
	}

	if err := a.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if player.NextCalls != 1 {
		t.Errorf("NextCalls = %d, want 1", player.NextCalls)
	}
}
