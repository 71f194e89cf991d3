package services_test

import (
	"errors"
	"strings"
	"testing"

	"ytmp3/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "yt-dlp", "extract-audio", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"yt-dlp", "extract-audio", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestIsClientError(t *testing.T) {
	if !services.IsClientError(services.Wrap(services.ErrValidation, "api", "info", "bad url", nil)) {
		t.Fatal("expected validation error to be a client error")
	}
	if !services.IsClientError(services.Wrap(services.ErrNotFound, "store", "open", "missing", nil)) {
		t.Fatal("expected not found error to be a client error")
	}
	if services.IsClientError(services.Wrap(services.ErrTimeout, "yt-dlp", "info", "slow", nil)) {
		t.Fatal("expected timeout to be a server error")
	}
}
