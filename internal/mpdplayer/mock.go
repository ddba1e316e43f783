package mpdplayer

import (
	"context"
	"sync"
)

// Mock is an in-memory double for Client, used by playeradapter and
// engine tests that shouldn't need a live MPD server.
type Mock struct {
	mu sync.Mutex

	Queue      []string
	Playing    bool
	NextCalls  int
	ClearCalls int
	StatusFn   func() (Status, error)
	IdleFn     func(ctx context.Context, subsystem string) error

	// AppendErrOn, if set, fails every Append of this exact path.
	AppendErrOn map[string]error
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{AppendErrOn: map[string]error{}}
}

func (m *Mock) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	m.Queue = nil
	m.Playing = false
	return nil
}

func (m *Mock) Append(_ context.Context, relativePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.AppendErrOn[relativePath]; ok {
		return err
	}
	m.Queue = append(m.Queue, relativePath)
	return nil
}

func (m *Mock) Play(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queue) == 0 {
		return nil
	}
	m.Playing = true
	return nil
}

func (m *Mock) Next(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextCalls++
	return nil
}

func (m *Mock) Status(_ context.Context) (Status, error) {
	if m.StatusFn != nil {
		return m.StatusFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{State: StateStop}
	if m.Playing && len(m.Queue) > 0 {
		st.State = StatePlay
		st.CurrentRelative = m.Queue[0]
	}
	return st, nil
}

func (m *Mock) Idle(ctx context.Context, subsystem string) error {
	if m.IdleFn != nil {
		return m.IdleFn(ctx, subsystem)
	}
	<-ctx.Done()
	return ctx.Err()
}
