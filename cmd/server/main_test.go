package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"
)

func TestWatchParentExits(t *testing.T) {
	origGetppid := getppid
	origSleep := sleep
	origExit := exit
	defer func() {
		getppid = origGetppid
		sleep = origSleep
		exit = origExit
	}()

	getppid = func() int { return 1 }
	sleep = func(time.Duration) {}

	done := make(chan struct{})
	exit = func(code int) {
		close(done)
		runtime.Goexit()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	go watchParent(logger)

	select {
	case <-done:
		// ok
	case <-time.After(1 * time.Second):
		t.Fatalf("watchParent did not exit")
	}
}

func TestMainLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("FIN_ADVISOR_DB_PATH", "")
	t.Setenv("FIN_ADVISOR_PORT", "")
	t.Setenv("FIN_ADVISOR_STORE", "sqlite")
	t.Setenv("FIN_ADVISOR_RESPONDER", "template")
	t.Setenv("FIN_ADVISOR_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	envFile := filepath.Join(tmp, "test.env")
	if err := os.WriteFile(envFile, []byte("FIN_ADVISOR_LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FIN_ADVISOR_LOG_LEVEL") })

	origArgs := os.Args
	origCommandLine := flag.CommandLine
	defer func() {
		os.Args = origArgs
		flag.CommandLine = origCommandLine
	}()

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = []string{
		"server",
		"--data-dir", tmp,
		"--port", "0",
		"--host", "127.0.0.1",
		"--env-file", envFile,
	}

	done := make(chan struct{})
	go func() {
		time.Sleep(150 * time.Millisecond)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(syscall.SIGTERM)
		}
	}()

	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
		// ok
	case <-time.After(3 * time.Second):
		t.Fatalf("main did not exit")
	}

	if _, err := os.Stat(filepath.Join(tmp, "advisor.db")); err != nil {
		t.Fatalf("expected chat database in data dir: %v", err)
	}
	if entries, err := os.ReadDir(filepath.Join(tmp, "logs")); err != nil || len(entries) == 0 {
		t.Fatalf("expected a log file, got %v (%v)", entries, err)
	}
}
