package faults

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Wrap(ErrExternalTool, "transcribe", "yt-dlp", "download audio", cause)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected marker in chain: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain: %v", err)
	}
	want := "external tool error: transcribe: yt-dlp: download audio: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaults(t *testing.T) {
	t.Parallel()

	err := Wrap(nil, "", " ", "", nil)
	if !errors.Is(err, ErrCapability) {
		t.Fatalf("expected default marker: %v", err)
	}
	if err.Error() != "capability failure: unknown failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClassifiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		disabled bool
		timeout  bool
	}{
		{name: "config", err: Wrap(ErrConfiguration, "newsapi", "", "NEWSAPI_KEY not set", nil), disabled: true},
		{name: "deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), timeout: true},
		{name: "timeout marker", err: Wrap(ErrTimeout, "aggregate", "rss", "", nil), timeout: true},
		{name: "plain", err: errors.New("x")},
	}

	for _, tc := range cases {
		if got := Disabled(tc.err); got != tc.disabled {
			t.Fatalf("%s: Disabled = %v, want %v", tc.name, got, tc.disabled)
		}
		if got := Timeout(tc.err); got != tc.timeout {
			t.Fatalf("%s: Timeout = %v, want %v", tc.name, got, tc.timeout)
		}
	}
}
