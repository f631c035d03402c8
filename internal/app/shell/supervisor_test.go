package shell

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apitutor/internal/pkg/resp"
)

// The supervisor tests re-run the test binary as the backend; helperEnv selects its behaviour.
const helperEnv = "APITUTOR_SHELL_HELPER"

func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}

	if mode == "exit" {
		os.Exit(3)
	}

	if mode == "stubborn" {
		signal.Ignore(os.Interrupt)
	}

	if mode == "slow" {
		time.Sleep(700 * time.Millisecond)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"}, "ok")
	})
	srv := &http.Server{Addr: "127.0.0.1:" + os.Getenv("HELPER_PORT"), Handler: mux}
	go srv.ListenAndServe()

	if mode == "stubborn" {
		select {}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	_ = srv.Close()
	os.Exit(0)
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func helperSupervisor(t *testing.T, mode string, grace time.Duration) *Supervisor {
	t.Helper()

	port := freePort(t)
	s := New(Config{
		Command: os.Args[0],
		Args:    []string{"-test.run=^TestHelperProcess$"},
		Env: []string{
			helperEnv + "=" + mode,
			"HELPER_PORT=" + strconv.Itoa(port),
		},
		Port:         port,
		ReadyTimeout: 10 * time.Second,
		StopGrace:    grace,
	})
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestSupervisor_StartWaitsForHealth(t *testing.T) {
	s := helperSupervisor(t, "serve", time.Second)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())

	res, err := http.Get(s.BaseURL() + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestSupervisor_StartIsIdempotent(t *testing.T) {
	s := helperSupervisor(t, "serve", time.Second)

	require.NoError(t, s.Start(context.Background()))
	pid := s.PID()
	require.NotZero(t, pid)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, pid, s.PID())
}

func TestSupervisor_ConcurrentStartWaitsForReadiness(t *testing.T) {
	s := helperSupervisor(t, "slow", time.Second)

	first := make(chan error, 1)
	go func() { first <- s.Start(context.Background()) }()

	require.Eventually(t, s.Running, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Start(context.Background()))

	res, err := http.Get(s.BaseURL() + "/health")
	require.NoError(t, err, "second Start returned before the backend was healthy")
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	require.NoError(t, <-first)
}

func TestSupervisor_ConcurrentStartHonoursItsContext(t *testing.T) {
	s := helperSupervisor(t, "slow", time.Second)

	first := make(chan error, 1)
	go func() { first <- s.Start(context.Background()) }()
	require.Eventually(t, s.Running, 5*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Start(ctx), context.DeadlineExceeded)

	require.NoError(t, <-first)
}

func TestSupervisor_StopInterruptsBackend(t *testing.T) {
	s := helperSupervisor(t, "serve", 5*time.Second)
	require.NoError(t, s.Start(context.Background()))

	start := time.Now()
	require.NoError(t, s.Stop(context.Background()))

	assert.False(t, s.Running())
	assert.Zero(t, s.PID())
	assert.Less(t, time.Since(start), 5*time.Second, "a cooperative backend exits before the grace period")
}

func TestSupervisor_StopKillsStubbornBackend(t *testing.T) {
	s := helperSupervisor(t, "stubborn", 200*time.Millisecond)
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Running())
	assert.Error(t, s.ExitErr())
}

func TestSupervisor_BackendExitingEarly(t *testing.T) {
	s := helperSupervisor(t, "exit", time.Second)

	err := s.Start(context.Background())
	require.ErrorIs(t, err, ErrExited)
	assert.False(t, s.Running())
}

func TestSupervisor_MissingBinary(t *testing.T) {
	s := New(Config{Command: fmt.Sprintf("/nonexistent/backend-%d", time.Now().UnixNano()), Port: 1})

	require.Error(t, s.Start(context.Background()))
	assert.False(t, s.Running())
	assert.NoError(t, s.Stop(context.Background()))
}
