/*
Package shell owns the backend process on behalf of a desktop front end.

A Supervisor spawns the server binary, waits until its health endpoint answers, and on shutdown
asks it to stop with an interrupt before killing it after a grace period.
*/
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"apitutor/internal/app/apiclient"
	"apitutor/internal/pkg/logx"
	"apitutor/internal/pkg/retry"
)

const (
	DefaultReadyTimeout = 10 * time.Second
	DefaultStopGrace    = 5 * time.Second

	// healthTimeout bounds a single health check.
	healthTimeout = time.Second
)

// ErrExited is returned by Start when the backend exits before it became ready.
var ErrExited = errors.New("backend exited before becoming ready")

// Config describes the backend process.
type Config struct {
	// Command is the backend executable; Args and Env are passed through unchanged.
	Command string
	Args    []string
	Env     []string

	// Port is where the backend listens on 127.0.0.1.
	Port int

	ReadyTimeout time.Duration
	StopGrace    time.Duration

	// Stdout and Stderr receive the backend's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Supervisor runs at most one backend process at a time.
type Supervisor struct {
	cfg Config

	mu      sync.Mutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	done    chan struct{}
	waitErr error

	// ready is closed once the current process's readiness wait has finished; readyErr is its result.
	ready    chan struct{}
	readyErr error

	// poll paces readiness polling; the ready timeout, not the attempt count, ends it.
	poll retry.Policy

	logger zerolog.Logger
}

// New creates a Supervisor. Zero durations in cfg get their defaults.
func New(cfg Config) *Supervisor {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = DefaultStopGrace
	}

	return &Supervisor{
		cfg:    cfg,
		poll:   retry.Policy{MaxAttempts: math.MaxInt32, BaseDelay: 25 * time.Millisecond, MaxDelay: 500 * time.Millisecond},
		logger: logx.Component("shell"),
	}
}

// BaseURL is the backend's local address.
func (s *Supervisor) BaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.cfg.Port)
}

// Running reports whether a backend process is alive.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runningLocked()
}

// PID returns the backend's process id, or 0 when none is running.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() {
		return 0
	}
	return s.cmd.Process.Pid
}

// Done is closed when the current backend process exits. It is nil before the first Start.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Start spawns the backend and blocks until it answers GET /health, ctx is done, or the ready
// timeout passes. Calling Start while a backend is running spawns nothing; it waits for the
// running backend's readiness result instead.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.runningLocked() {
		ready, pid := s.ready, s.cmd.Process.Pid
		s.mu.Unlock()
		s.logger.Info().Int("pid", pid).Msg("Backend already running")

		select {
		case <-ready:
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.readyErr
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	procCtx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(procCtx, s.cfg.Command, s.cfg.Args...)
	cmd.Env = append(os.Environ(), s.cfg.Env...)
	cmd.Stdout = s.cfg.Stdout
	cmd.Stderr = s.cfg.Stderr
	cmd.Cancel = func() error {
		// os.Interrupt is not deliverable on every platform; fall back to a kill.
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = s.cfg.StopGrace

	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("start backend %q: %w", s.cfg.Command, err)
	}

	if s.cancel != nil {
		s.cancel()
	}
	done := make(chan struct{})
	ready := make(chan struct{})
	s.cmd, s.cancel, s.done, s.waitErr = cmd, cancel, done, nil
	s.ready, s.readyErr = ready, nil
	s.mu.Unlock()

	s.logger.Info().Str("command", s.cfg.Command).Int("pid", cmd.Process.Pid).Msg("Backend started")

	go func() {
		err := cmd.Wait()

		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		close(done)

		s.logger.Info().Err(err).Int("pid", cmd.Process.Pid).Msg("Backend exited")
	}()

	err := s.waitReady(ctx, done)
	if err != nil {
		_ = s.Stop(context.Background())
	}

	s.mu.Lock()
	s.readyErr = err
	s.mu.Unlock()
	close(ready)

	if err != nil {
		return err
	}

	s.logger.Info().Str("url", s.BaseURL()).Msg("Backend ready")
	return nil
}

// Stop interrupts the backend and waits for it to exit. A backend ignoring the interrupt is
// killed after the stop grace period. Stop returns ctx.Err() if ctx ends first.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExitErr returns the result of the last backend's Wait, once it has exited.
func (s *Supervisor) ExitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.waitErr
}

func (s *Supervisor) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// waitReady polls the health endpoint until it succeeds.
func (s *Supervisor) waitReady(ctx context.Context, exited <-chan struct{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	client := apiclient.New(s.BaseURL(), apiclient.WithHTTPClient(&http.Client{Timeout: healthTimeout}))

	_, err := retry.Do(ctx, s.poll, func(ctx context.Context) (apiclient.Health, error) {
		select {
		case <-exited:
			return apiclient.Health{}, retry.Permanent(ErrExited)
		default:
		}
		return client.Health(ctx)
	})
	if err != nil {
		return fmt.Errorf("wait for backend readiness: %w", err)
	}
	return nil
}
