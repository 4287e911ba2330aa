package canopy

import (
	"time"
)

// tickStats holds per-tick timing. Only populated when kernel debug is on.
type tickStats struct {
	elapsed time.Duration
	delta   float64
	players int
	updated int
}

func (k *Kernel) debugLog(stats tickStats) {
	if !k.debug {
		return
	}
	logf(kernelTag, "tick: %v | dt: %.2fms | players: %d | updated: %d",
		stats.elapsed, stats.delta, stats.players, stats.updated)
}

// SetDebugMode enables or disables per-tick timing logs.
func (k *Kernel) SetDebugMode(enabled bool) {
	k.debug = enabled
}

// leavesStats summarizes the pool for debug output.
type leavesStats struct {
	live    int
	idle    int
	falling int
	split   int
	pieces  int
}

func (l *Leaves) stats() leavesStats {
	s := leavesStats{live: l.live}
	for i := 0; i < l.live; i++ {
		switch l.pool[i].State {
		case LeafIdle:
			s.idle++
		case LeafFalling:
			s.falling++
		case LeafSplit:
			s.split++
		case LeafPiece:
			s.pieces++
		}
	}
	return s
}

// debugWarnCapacity logs once when the pool reaches its limit.
func (l *Leaves) debugWarnCapacity() {
	if l.live < l.limit {
		l.warnedFull = false
		return
	}
	if l.warnedFull {
		return
	}
	l.warnedFull = true
	s := l.stats()
	logf(leavesTag, "warning: pool full (%d/%d) idle: %d | falling: %d | split: %d | pieces: %d",
		s.live, l.limit, s.idle, s.falling, s.split, s.pieces)
}
