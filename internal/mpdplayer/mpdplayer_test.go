package mpdplayer

import (
	"testing"

	"github.com/fhs/gompd/v2/mpd"
)

func TestParseStatusPlaying(t *testing.T) {
	st := parseStatus(mpd.Attrs{"state": "play", "elapsed": "12.5", "duration": "184.2"})
	if st.State != StatePlay {
		t.Errorf("State = %v, want StatePlay", st.State)
	}
	if st.ElapsedSeconds != 12.5 {
		t.Errorf("ElapsedSeconds = %v, want 12.5", st.ElapsedSeconds)
	}
	if !st.HasDuration || st.DurationSeconds != 184.2 {
		t.Errorf("Duration = %v/%v, want 184.2/true", st.DurationSeconds, st.HasDuration)
	}
}

func TestParseStatusPaused(t *testing.T) {
	st := parseStatus(mpd.Attrs{"state": "pause"})
	if st.State != StatePause {
		t.Errorf("State = %v, want StatePause", st.State)
	}
}

func TestParseStatusStoppedHasNoDuration(t *testing.T) {
	st := parseStatus(mpd.Attrs{"state": "stop"})
	if st.State != StateStop {
		t.Errorf("State = %v, want StateStop", st.State)
	}
	if st.HasDuration {
		t.Error("expected HasDuration=false when the status omits duration")
	}
}

func TestParseStatusUnknownStateDefaultsToStop(t *testing.T) {
	st := parseStatus(mpd.Attrs{})
	if st.State != StateStop {
		t.Errorf("State = %v, want StateStop for an empty attrs map", st.State)
	}
}

func TestMockSatisfiesRoundTrip(t *testing.T) {
	m := NewMock()
	m.Queue = []string{"a.flac"}
	m.Playing = true

	st, err := m.Status(nil)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.CurrentRelative != "a.flac" {
		t.Errorf("CurrentRelative = %q, want a.flac", st.CurrentRelative)
	}
}
