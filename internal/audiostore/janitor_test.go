package audiostore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ytmp3/internal/logging"
	"ytmp3/internal/testsupport"
)

func TestJanitorSweepsAtStartAndStops(t *testing.T) {
	store := newTestStore(t)
	stale := filepath.Join(store.Dir(), "1.mp3")
	testsupport.WriteAgedFile(t, stale, 1, 2*time.Hour)

	janitor := NewJanitor(store, time.Hour, time.Hour, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- janitor.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(stale); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("janitor did not sweep at start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestJanitorSweepsOnTick(t *testing.T) {
	store := newTestStore(t)
	janitor := NewJanitor(store, 20*time.Millisecond, 50*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = janitor.Run(ctx) }()

	target := filepath.Join(store.Dir(), "7.mp3")
	testsupport.WriteFile(t, target, 1)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("janitor did not remove aged file on a later tick")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewJanitorDefaults(t *testing.T) {
	janitor := NewJanitor(newTestStore(t), 0, -1, nil)
	if janitor.interval != time.Hour || janitor.maxAge != time.Hour {
		t.Fatalf("expected hourly defaults, got %v/%v", janitor.interval, janitor.maxAge)
	}
}
