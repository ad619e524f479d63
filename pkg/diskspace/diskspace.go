// Package diskspace reports the total capacity of the volume holding the
// application's home directory.
//
// TotalDiskSpace never fails: every internal error is mapped to
// ErrMetadataUnavailable and then to a zero reading. Callers cannot tell a
// zero-capacity volume from a failed lookup.
package diskspace

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"phonecleaner/pkg/log"
	"phonecleaner/pkg/metrics"
)

// Reading is the total capacity in bytes of the volume containing a path.
type Reading = int64

// ErrMetadataUnavailable covers every reason the capacity attribute cannot be read.
var ErrMetadataUnavailable = errors.New("filesystem metadata unavailable")

// Stats is the raw block accounting returned by a statfs-like call.
type Stats struct {
	Blocks    uint64
	BlockSize int64
}

// StatFunc reads filesystem statistics for the volume containing path.
type StatFunc func(path string) (Stats, error)

// PathFunc resolves the directory whose volume is queried.
type PathFunc func() (string, error)

// Querier answers total-capacity queries. The zero value is not usable; use New.
type Querier struct {
	path PathFunc
	stat StatFunc
}

// Option configures a Querier.
type Option func(*Querier)

// WithPath queries the volume containing dir instead of the home directory.
func WithPath(dir string) Option {
	return func(q *Querier) {
		if strings.TrimSpace(dir) == "" {
			return
		}
		q.path = func() (string, error) { return dir, nil }
	}
}

// WithPathFunc replaces the directory resolver.
func WithPathFunc(fn PathFunc) Option {
	return func(q *Querier) {
		if fn != nil {
			q.path = fn
		}
	}
}

// WithStatFunc replaces the platform statfs backend.
func WithStatFunc(fn StatFunc) Option {
	return func(q *Querier) {
		if fn != nil {
			q.stat = fn
		}
	}
}

// New returns a Querier for the user's home directory using the platform backend.
func New(opts ...Option) *Querier {
	q := &Querier{
		path: os.UserHomeDir,
		stat: statfs,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// TotalDiskSpace returns the total capacity of the queried volume, or 0 on any error.
func (q *Querier) TotalDiskSpace() Reading {
	path, err := q.path()
	if err != nil {
		return q.fail("", fmt.Errorf("%w: resolve path: %v", ErrMetadataUnavailable, err))
	}

	total, err := Capacity(path, q.stat)
	if err != nil {
		return q.fail(path, err)
	}

	return total
}

func (q *Querier) fail(path string, err error) Reading {
	metrics.DiskQueryFailuresTotal.Inc()
	log.Debug().Err(err).Str("path", path).Msg("Disk capacity unavailable, reporting 0")
	return 0
}

// Capacity reads the total capacity of the volume containing path with stat.
// All failures wrap ErrMetadataUnavailable.
func Capacity(path string, stat StatFunc) (Reading, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty path", ErrMetadataUnavailable)
	}
	if stat == nil {
		stat = statfs
	}

	stats, err := stat(path)
	if err != nil {
		if errors.Is(err, ErrMetadataUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: statfs %s: %v", ErrMetadataUnavailable, path, err)
	}

	return stats.Total()
}

// Total multiplies blocks by block size, saturating at math.MaxInt64.
func (s Stats) Total() (Reading, error) {
	if s.BlockSize <= 0 {
		return 0, fmt.Errorf("%w: invalid block size %d", ErrMetadataUnavailable, s.BlockSize)
	}

	bsize := uint64(s.BlockSize)
	if s.Blocks > math.MaxInt64/bsize {
		return math.MaxInt64, nil
	}

	return Reading(s.Blocks * bsize), nil //nolint:gosec // bounded above
}
