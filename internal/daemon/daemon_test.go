package daemon_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ytmp3/internal/daemon"
	"ytmp3/internal/logging"
	"ytmp3/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithYtDlpStub(testsupport.YtDlpStub{InfoJSON: testsupport.DefaultInfoJSON}))

	d, err := daemon.New(cfg, logging.NewNop(), "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Stop() })

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.Address == "" {
		t.Fatal("expected bound address")
	}

	running, err := daemon.IsRunning(cfg)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if !running {
		t.Fatal("expected lock to be held")
	}

	resp, err := http.Post("http://"+status.Address+"/api/info", "application/json",
		strings.NewReader(`{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`))
	if err != nil {
		t.Fatalf("POST /api/info: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"duration":"3:32"`) {
		t.Fatalf("unexpected body %s", body)
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	running, err = daemon.IsRunning(cfg)
	if err != nil {
		t.Fatalf("IsRunning after stop: %v", err)
	}
	if running {
		t.Fatal("expected lock to be released")
	}
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := daemon.New(cfg, logging.NewNop(), "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = first.Stop() })

	second, err := daemon.New(cfg, logging.NewNop(), "test")
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	err = second.Start(context.Background())
	if !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestDaemonRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stale := filepath.Join(cfg.Paths.DownloadsDir, "1700000000000.mp3")
	testsupport.WriteAgedFile(t, stale, 16, 2*time.Hour)

	d, err := daemon.New(cfg, logging.NewNop(), "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(stale); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup sweep did not remove stale file")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := daemon.New(nil, logging.NewNop(), "test"); err == nil {
		t.Fatal("expected error for nil config")
	}
}
