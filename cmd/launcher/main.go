/*
Package main is the desktop-shell side of the tutorial: it starts the API server as a child
process, waits until it is reachable, and stops it again when the launcher is interrupted.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"apitutor/internal/app/shell"
	"apitutor/internal/pkg/logx"
)

func main() {
	backend := flag.String("backend", "./apitutor", "path to the API server binary")
	port := flag.Int("port", 4000, "port the API server listens on")
	readyTimeout := flag.Duration("ready-timeout", shell.DefaultReadyTimeout, "how long to wait for the server to become healthy")
	stopGrace := flag.Duration("stop-grace", shell.DefaultStopGrace, "how long the server may take to exit after an interrupt")
	dev := flag.Bool("dev", true, "human readable logs")
	flag.Parse()

	logx.InitGlobalLogger(*dev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := shell.New(shell.Config{
		Command:      *backend,
		Env:          []string{"PORT=" + strconv.Itoa(*port)},
		Port:         *port,
		ReadyTimeout: *readyTimeout,
		StopGrace:    *stopGrace,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	})

	if err := sup.Start(ctx); err != nil {
		logx.Fatal(err, "Backend did not start")
	}

	fmt.Printf("UI available at %s (Ctrl+C to quit)\n", sup.BaseURL())

	select {
	case <-ctx.Done():
		logx.Info("Launcher interrupted, stopping backend...")
	case <-sup.Done():
		logx.Warn("Backend exited on its own", "error", fmt.Sprint(sup.ExitErr()))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), *stopGrace+time.Second)
	defer cancel()

	if err := sup.Stop(stopCtx); err != nil {
		logx.Error(err, "Backend did not stop in time")
		os.Exit(1)
	}
	logx.Info("Backend stopped.")
}
