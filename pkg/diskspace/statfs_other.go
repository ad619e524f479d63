//go:build !linux && !darwin && !freebsd && !windows

package diskspace

import "fmt"

func statfs(path string) (Stats, error) {
	return Stats{}, fmt.Errorf("%w: unsupported platform for %s", ErrMetadataUnavailable, path)
}
