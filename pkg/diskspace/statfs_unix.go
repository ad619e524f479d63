//go:build linux || darwin || freebsd

package diskspace

import (
	"golang.org/x/sys/unix"
)

func statfs(path string) (Stats, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Stats{}, err
	}

	// Bsize is int64 on linux, uint32 on darwin and uint64 on freebsd.
	return Stats{
		Blocks:    stat.Blocks,
		BlockSize: int64(stat.Bsize), //nolint:unconvert,gosec // width differs per platform
	}, nil
}
