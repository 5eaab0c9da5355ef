package segcache

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"voxcache/internal/annotation"
	"voxcache/internal/services"
)

const segmentDigits = 3

// SegmentDir returns the directory holding segment files under root.
func SegmentDir(root string) string {
	return filepath.Join(root, "voxceleb2", "np_files")
}

// LockPath returns the lock file guarding the segment directory.
func LockPath(root string) string {
	return filepath.Join(root, "voxceleb2", "np_files.lock")
}

// FileName formats the cache file name of one segment.
func FileName(videoID string, segment int, ext string) string {
	return fmt.Sprintf("%s_%03d%s", videoID, segment, ext)
}

// Path returns the full path of one segment file under root.
func Path(root, videoID string, segment int, ext string) string {
	return filepath.Join(SegmentDir(root), FileName(videoID, segment, ext))
}

// ParseName extracts the video id and segment index from a cache file name.
// The index needs at least three digits; extra zero padding is accepted, so
// X_001 and X_0001 both name segment 1 and collide when indexed.
func ParseName(name, ext string) (string, int, error) {
	if !strings.HasSuffix(name, ext) {
		return "", 0, nameError(name, fmt.Sprintf("missing extension %s", ext))
	}
	stem := strings.TrimSuffix(name, ext)
	idLen := annotation.VideoIDLength
	if len(stem) < idLen+1+segmentDigits {
		return "", 0, nameError(name, "too short")
	}
	videoID, sep, digits := stem[:idLen], stem[idLen], stem[idLen+1:]
	if sep != '_' {
		return "", 0, nameError(name, fmt.Sprintf("expected '_' at offset %d", idLen))
	}
	if !validVideoID(videoID) {
		return "", 0, nameError(name, fmt.Sprintf("invalid video id %q", videoID))
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", 0, nameError(name, fmt.Sprintf("segment index %q is not numeric", digits))
		}
	}
	segment, err := strconv.Atoi(digits)
	if err != nil {
		return "", 0, nameError(name, fmt.Sprintf("segment index %q: %v", digits, err))
	}
	return videoID, segment, nil
}

func validVideoID(id string) bool {
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func nameError(name, reason string) error {
	return services.Wrap(services.ErrFilenameFormat, "segcache", "parse name", fmt.Sprintf("%s: %s", name, reason), nil)
}
