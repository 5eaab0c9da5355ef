package segcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

var statfs statfsFunc = realStatfs

// Usage describes the on-disk footprint of the segment directory.
type Usage struct {
	Files        int     `json:"files"`
	Bytes        int64   `json:"bytes"`
	FreeBytes    uint64  `json:"free_bytes"`
	TotalFSBytes uint64  `json:"total_fs_bytes"`
	FreeRatio    float64 `json:"free_ratio"`
}

// DiskUsage sums the sizes of files with the given extension under the
// segment directory of root and reports free space on its filesystem. A
// missing directory reports zero files and the free space of root.
func DiskUsage(root, ext string) (Usage, error) {
	var u Usage
	dir := SegmentDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return u, fmt.Errorf("segcache: list %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		u.Files++
		u.Bytes += info.Size()
	}

	statPath := dir
	if len(entries) == 0 {
		statPath = root
	}
	total, free, err := statfs(statPath)
	if err != nil {
		return u, fmt.Errorf("segcache: statfs: %w", err)
	}
	u.TotalFSBytes = total
	u.FreeBytes = free
	u.FreeRatio = 1.0
	if total > 0 {
		u.FreeRatio = float64(free) / float64(total)
	}
	return u, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}
