// Package supervisor manages the single long-running BehaviorTracker
// process: spawning it detached from the foreground CLI, checking
// whether one is already alive, and signaling it to stop.
package supervisor

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/fennec-audio/muse/internal/muselog"
	"github.com/fennec-audio/muse/internal/muserr"
)

// Identity is the parsed content of the identity file: the daemon's
// PID plus a run token that changes every time a new daemon starts.
// The token is recorded and parsed but not compared against anything:
// Start, Stop and Status judge liveness by the PID alone, so a recycled
// PID belonging to an unrelated process reads as a running tracker.
type Identity struct {
	PID   int
	Token string
}

// Supervisor manages exactly one tracker process per identity file.
type Supervisor struct {
	identityPath string
}

// New builds a Supervisor backed by the identity file at identityPath.
func New(identityPath string) *Supervisor {
	return &Supervisor{identityPath: identityPath}
}

// Start spawns a detached daemon process running `binary` with args,
// unless one is already running, in which case it reports that and
// returns immediately. Go cannot safely fork() inside a process that
// may already have multiple OS threads running, so a fresh detached
// child takes the place of the classic fork-then-daemonize sequence:
// the child is started with its own session (SysProcAttr.Setsid) so it
// survives the parent's exit, and it writes its own identity via
// MarkRunning once it has initialized.
func (s *Supervisor) Start(binary string, args []string) (alreadyRunning bool, err error) {
	if id, err := s.readIdentity(); err == nil && alive(id.PID) {
		return true, nil
	}
	os.Remove(s.identityPath)

	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return false, muserr.Wrap(muserr.ErrSupervisor, err)
	}
	// Release our hold on the child so it isn't reaped as ours when we exit.
	_ = cmd.Process.Release()

	for i := 0; i < 20; i++ {
		time.Sleep(50 * time.Millisecond)
		if id, err := s.readIdentity(); err == nil && alive(id.PID) {
			return false, nil
		}
	}
	return false, muserr.Wrap(muserr.ErrSupervisor, errors.New("daemon did not report ready in time"))
}

// MarkRunning is called by the daemon process itself, immediately
// after it has finished initializing, to write its own PID and a fresh
// run token into the identity file.
func (s *Supervisor) MarkRunning() error {
	token := uuid.New().String()
	line := fmt.Sprintf("%d\n%s\n", os.Getpid(), token)
	if err := os.WriteFile(s.identityPath, []byte(line), 0o644); err != nil {
		return muserr.Wrap(muserr.ErrSupervisor, err)
	}
	muselog.Component("supervisor").Info().Int("pid", os.Getpid()).Str("token", token).Msg("daemon identity written")
	return nil
}

// Stop signals the running daemon to terminate and removes the
// identity file. It fails if no daemon is running or the signal
// couldn't be delivered.
func (s *Supervisor) Stop() error {
	id, err := s.readIdentity()
	if err != nil {
		return muserr.Wrap(muserr.ErrSupervisor, err)
	}
	if !alive(id.PID) {
		os.Remove(s.identityPath)
		return muserr.Wrap(muserr.ErrSupervisor, errors.New("no running daemon"))
	}

	proc, err := os.FindProcess(id.PID)
	if err != nil {
		return muserr.Wrap(muserr.ErrSupervisor, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return muserr.Wrap(muserr.ErrSupervisor, err)
	}
	return os.Remove(s.identityPath)
}

// Status reports whether a tracker is currently running.
func (s *Supervisor) Status() (running bool, pid int, err error) {
	id, err := s.readIdentity()
	if err != nil {
		return false, 0, nil
	}
	if !alive(id.PID) {
		return false, 0, nil
	}
	return true, id.PID, nil
}

func (s *Supervisor) readIdentity() (Identity, error) {
	f, err := os.Open(s.identityPath)
	if err != nil {
		return Identity{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return Identity{}, errors.New("empty identity file")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return Identity{}, fmt.Errorf("invalid pid in identity file: %w", err)
	}

	token := ""
	if scanner.Scan() {
		token = strings.TrimSpace(scanner.Text())
	}
	return Identity{PID: pid, Token: token}, nil
}

// alive reports whether pid refers to a live process, using signal 0
// which the kernel delivers to no one but still validates the target.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
