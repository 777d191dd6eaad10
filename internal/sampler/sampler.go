// Package sampler is the stateful wrapper over internal/forest that
// turns two successive snapshots into per-process CPU load. It owns the
// Uninitialized -> Running state machine from spec section 4.3.
package sampler

import (
	"time"

	"github.com/ja7ad/pidtree_mon/internal/forest"
)

type state int

const (
	uninitialized state = iota
	running
)

// Sampler retains the previous snapshot and the wall-clock time it was
// taken at, and derives a scale factor once per tick instead of dividing
// per PID in the hot path.
type Sampler struct {
	reader     forest.Reader
	clockTicks int

	state  state
	prev   forest.Snapshot
	prevAt time.Time

	now func() time.Time // defaults to time.Now; overridable in tests
}

// New constructs a Sampler reading from r, with CPU time measured in
// ticks of the given rate (see procfs.ClockTicks).
func New(r forest.Reader, clockTicks int) *Sampler {
	return &Sampler{reader: r, clockTicks: clockTicks, now: time.Now}
}

// Tick takes one sample. On the very first call it seeds the baseline
// and returns an all-zero load map. On every subsequent call it returns
// the snapshot together with each live PID's core-normalized CPU load
// since the previous call.
//
// If the underlying snapshot fails outright, the tick is skipped and the
// previous state is retained untouched — the caller gets the error and
// should simply try again next tick.
func (s *Sampler) Tick() (forest.Snapshot, map[int]float64, error) {
	snap, err := forest.Capture(s.reader)
	if err != nil {
		return forest.Snapshot{}, nil, err
	}
	now := s.now()

	if s.state == uninitialized {
		s.prev = snap
		s.prevAt = now
		s.state = running
		loads := make(map[int]float64, len(snap.Entries))
		for pid := range snap.Entries {
			loads[pid] = 0
		}
		return snap, loads, nil
	}

	elapsed := now.Sub(s.prevAt).Seconds()
	scale := 1.0 / (float64(s.clockTicks) * elapsed)
	if elapsed <= 0 {
		scale = 0
	}

	loads := make(map[int]float64, len(snap.Entries))
	for pid, entry := range snap.Entries {
		prevEntry, ok := s.prev.Entries[pid]
		if !ok {
			loads[pid] = 0
			continue
		}
		loads[pid] = float64(deltaTicks(entry.Ticks, prevEntry.Ticks)) * scale
		if loads[pid] < 0 {
			loads[pid] = 0
		}
	}

	s.prev = snap
	s.prevAt = now
	return snap, loads, nil
}

// deltaTicks guards against a counter that appears to go backwards —
// pathological, but cheaper to clamp than to propagate as negative load.
func deltaTicks(now, prev uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	return 0
}
