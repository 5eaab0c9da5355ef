package services_test

import (
	"errors"
	"strings"
	"testing"

	"voxcache/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrStaleCacheEntry, "dataset", "read", "segment missing", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrStaleCacheEntry) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"dataset", "read", "segment missing"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrUnknownSpeaker, "", "", "", nil)
	if !errors.Is(err, services.ErrUnknownSpeaker) {
		t.Fatalf("expected marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "cache failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestRecoverableClassification(t *testing.T) {
	cases := []struct {
		marker error
		want   bool
	}{
		{services.ErrAssetLoad, false},
		{services.ErrConfiguration, false},
		{services.ErrUnknownVideoID, false},
		{services.ErrFilenameFormat, false},
		{services.ErrDuplicateEntry, false},
		{services.ErrUnknownSpeaker, true},
		{services.ErrStaleCacheEntry, true},
		{services.ErrCorruptSegment, true},
		{services.ErrCacheBusy, true},
		{services.ErrPositionOutOfRange, true},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "test", "op", "msg", nil)
		if got := services.Recoverable(err); got != tc.want {
			t.Fatalf("Recoverable(%v) = %v, want %v", tc.marker, got, tc.want)
		}
	}
	if !services.Recoverable(nil) {
		t.Fatal("expected nil error to be recoverable")
	}
}

func TestKindLabels(t *testing.T) {
	err := services.Wrap(services.ErrUnknownVideoID, "segcache", "scan", "CCCCCCCCCCC", nil)
	if kind := services.Kind(err); kind != "unknown_video_id" {
		t.Fatalf("unexpected kind %q", kind)
	}
	if kind := services.Kind(errors.New("plain")); kind != "internal" {
		t.Fatalf("unexpected kind for plain error %q", kind)
	}
}
