package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAssetLoad          = errors.New("annotation asset load error")
	ErrConfiguration      = errors.New("configuration error")
	ErrUnknownVideoID     = errors.New("unknown video id")
	ErrFilenameFormat     = errors.New("malformed cache filename")
	ErrDuplicateEntry     = errors.New("duplicate cache entry")
	ErrCacheBusy          = errors.New("cache busy")
	ErrUnknownSpeaker     = errors.New("unknown speaker")
	ErrStaleCacheEntry    = errors.New("stale cache entry")
	ErrCorruptSegment     = errors.New("corrupt segment file")
	ErrPositionOutOfRange = errors.New("position out of range")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether err reflects a caller or environment mismatch
// the caller can act on. Asset, configuration, and scan-integrity failures
// leave the dataset unusable and are not recoverable.
func Recoverable(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrAssetLoad),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrUnknownVideoID),
		errors.Is(err, ErrFilenameFormat),
		errors.Is(err, ErrDuplicateEntry):
		return false
	default:
		return true
	}
}

// Kind returns a short stable label for the marker carried by err, or
// "internal" when none matches.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.label
		}
	}
	return "internal"
}

var kinds = []struct {
	marker error
	label  string
}{
	{ErrAssetLoad, "asset_load"},
	{ErrConfiguration, "configuration"},
	{ErrUnknownVideoID, "unknown_video_id"},
	{ErrFilenameFormat, "filename_format"},
	{ErrDuplicateEntry, "duplicate_entry"},
	{ErrCacheBusy, "cache_busy"},
	{ErrUnknownSpeaker, "unknown_speaker"},
	{ErrStaleCacheEntry, "stale_cache_entry"},
	{ErrCorruptSegment, "corrupt_segment"},
	{ErrPositionOutOfRange, "position_out_of_range"},
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "cache failure"
	}
	return strings.Join(parts, ": ")
}
