// Package mpdplayer is a native-protocol MPD client implementing the
// PlayerControl contract the rest of the engine depends on.
package mpdplayer

import (
	"context"
	"strconv"
	"sync"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/fennec-audio/muse/internal/muserr"
)

// PlayState is the player's coarse transport state.
type PlayState int

const (
	StateStop PlayState = iota
	StatePlay
	StatePause
)

// Status is the subset of MPD's status the tracker and `info` command
// care about.
type Status struct {
	CurrentRelative string // empty when nothing is playing
	ElapsedSeconds  float64
	DurationSeconds float64 // 0 means unknown
	HasDuration     bool
	State           PlayState
}

// Client talks to a single MPD server over its native protocol,
// reconnecting lazily on the next call after a failure. One Client is
// not meant to be used from multiple goroutines at once, matching the
// single-threaded contract in spec §5.
type Client struct {
	network, address string

	mu   sync.Mutex
	conn *mpd.Client
}

// Dial connects to an MPD server at address (host:port).
func Dial(address string) (*Client, error) {
	c := &Client{network: "tcp", address: address}
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensure() error {
	if c.conn != nil {
		if err := c.conn.Ping(); err == nil {
			return nil
		}
		c.conn.Close()
		c.conn = nil
	}
	conn, err := mpd.Dial(c.network, c.address)
	if err != nil {
		return muserr.Wrap(muserr.ErrPlayer, err)
	}
	c.conn = conn
	return nil
}

func (c *Client) withConn(fn func(*mpd.Client) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensure(); err != nil {
		return err
	}
	if err := fn(c.conn); err != nil {
		return muserr.Wrap(muserr.ErrPlayer, err)
	}
	return nil
}

func (c *Client) Clear(_ context.Context) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Clear()
	})
}

func (c *Client) Append(_ context.Context, relativePath string) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Add(relativePath)
	})
}

func (c *Client) Play(_ context.Context) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Play(-1)
	})
}

func (c *Client) Next(_ context.Context) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Next()
	})
}

// ListAll returns every relative path MPD has catalogued, used by
// PathMapper's root-discovery strategy 2.
func (c *Client) ListAll(_ context.Context) ([]string, error) {
	var paths []string
	err := c.withConn(func(conn *mpd.Client) error {
		songs, err := conn.ListAllInfo("/")
		if err != nil {
			return err
		}
		for _, song := range songs {
			if file, ok := song["file"]; ok {
				paths = append(paths, file)
			}
		}
		return nil
	})
	return paths, err
}

// Status reads the current player status.
func (c *Client) Status(_ context.Context) (Status, error) {
	var st Status
	err := c.withConn(func(conn *mpd.Client) error {
		attrs, err := conn.Status()
		if err != nil {
			return err
		}
		st = parseStatus(attrs)

		if st.State != StateStop {
			current, err := conn.CurrentSong()
			if err == nil {
				st.CurrentRelative = current["file"]
			}
		}
		return nil
	})
	return st, err
}

// parseStatus turns MPD's status attrs map into a Status, without
// touching the connection — split out so the parsing itself is
// testable without a live server.
func parseStatus(attrs mpd.Attrs) Status {
	var st Status

	switch attrs["state"] {
	case "play":
		st.State = StatePlay
	case "pause":
		st.State = StatePause
	default:
		st.State = StateStop
	}

	if elapsed, ok := attrs["elapsed"]; ok {
		st.ElapsedSeconds, _ = strconv.ParseFloat(elapsed, 64)
	}
	if duration, ok := attrs["duration"]; ok {
		if d, err := strconv.ParseFloat(duration, 64); err == nil {
			st.DurationSeconds = d
			st.HasDuration = true
		}
	}

	return st
}

// Idle blocks until the named subsystem changes, or ctx is canceled.
// It opens a dedicated watcher connection per call rather than reusing
// the pooled one, mirroring the event-loop pattern of watching MPD's
// idle notifications on a connection set aside for that purpose.
func (c *Client) Idle(ctx context.Context, subsystem string) error {
	watcher, err := mpd.NewWatcher(c.network, c.address, "")
	if err != nil {
		return muserr.Wrap(muserr.ErrPlayer, err)
	}
	defer watcher.Close()

	for {
		select {
		case event := <-watcher.Event:
			if event == subsystem {
				return nil
			}
		case err := <-watcher.Error:
			return muserr.Wrap(muserr.ErrPlayer, err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
