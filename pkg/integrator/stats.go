package integrator

import (
	"sync/atomic"

	"github.com/df07/go-radiance-estimator/pkg/core"
)

// Stats counts path outcomes. It is updated concurrently by all workers.
type Stats struct {
	paths        atomic.Int64
	zeroRadiance atomic.Int64
	misses       atomic.Int64
	skips        atomic.Int64
	estimates    atomic.Int64

	// lengths[n] counts paths that intersected the scene n times
	lengths [maxSkips + 2]atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	Paths        int64
	ZeroRadiance int64
	Misses       int64
	Skips        int64
	Estimates    int64

	// PathLengths maps intersections per path to path count, omitting zeros
	PathLengths map[int]int64
}

func (s *Stats) recordPath(length int, radiance core.Vec3) {
	s.paths.Add(1)
	if radiance.IsBlack() {
		s.zeroRadiance.Add(1)
	}
	if length >= len(s.lengths) {
		length = len(s.lengths) - 1
	}
	s.lengths[length].Add(1)
}

// Snapshot copies the current counters
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Paths:        s.paths.Load(),
		ZeroRadiance: s.zeroRadiance.Load(),
		Misses:       s.misses.Load(),
		Skips:        s.skips.Load(),
		Estimates:    s.estimates.Load(),
		PathLengths:  make(map[int]int64),
	}
	for i := range s.lengths {
		if n := s.lengths[i].Load(); n > 0 {
			snap.PathLengths[i] = n
		}
	}
	return snap
}

// ZeroRadiancePercent is the share of paths that returned black
func (ss StatsSnapshot) ZeroRadiancePercent() float64 {
	if ss.Paths == 0 {
		return 0
	}
	return 100 * float64(ss.ZeroRadiance) / float64(ss.Paths)
}
