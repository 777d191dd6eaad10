package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/pidtree_mon/internal/forest"
)

// scriptedReader replays a fixed sequence of forest.Entry maps; the test
// picks the current map by setting n between ticks, so sampler.Tick can
// be exercised deterministically.
type scriptedReader struct {
	ticks []map[int]forest.Entry
	n     int
}

func (s *scriptedReader) ListPIDs() ([]int, error) {
	m := s.ticks[s.n]
	pids := make([]int, 0, len(m))
	for pid := range m {
		pids = append(pids, pid)
	}
	return pids, nil
}

func (s *scriptedReader) ReadEntry(pid int) (int, uint64, error) {
	e := s.ticks[s.n][pid]
	return e.Parent, e.Ticks, nil
}

func TestSampler_FirstTickIsZero(t *testing.T) {
	r := &scriptedReader{ticks: []map[int]forest.Entry{
		{1: {Parent: 0, Ticks: 2000}, 42: {Parent: 1, Ticks: 500}},
	}}
	sm := New(r, 100)
	_, loads, err := sm.Tick()
	require.NoError(t, err)
	assert.Equal(t, 0.0, loads[1])
	assert.Equal(t, 0.0, loads[42])
}

func TestSampler_S1Scenario(t *testing.T) {
	// From spec §8 S1: tick rate 100, elapsed 1s.
	r := &scriptedReader{ticks: []map[int]forest.Entry{
		{1: {Parent: 0, Ticks: 2000}, 42: {Parent: 1, Ticks: 500}, 99: {Parent: 42, Ticks: 100}},
		{1: {Parent: 0, Ticks: 2100}, 42: {Parent: 1, Ticks: 560}, 99: {Parent: 42, Ticks: 130}},
	}}
	sm := New(r, 100)
	start := time.Now()
	clock := start
	sm.now = func() time.Time { return clock } // pin elapsed without sleeping

	_, _, err := sm.Tick()
	require.NoError(t, err)
	clock = start.Add(time.Second)
	r.n = 1

	_, loads, err := sm.Tick()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, loads[1], 1e-9)
	assert.InDelta(t, 0.6, loads[42], 1e-9)
	assert.InDelta(t, 0.3, loads[99], 1e-9)
}

func TestSampler_PIDOnlyInNewSnapshotIsZero(t *testing.T) {
	r := &scriptedReader{ticks: []map[int]forest.Entry{
		{1: {Parent: 0, Ticks: 100}},
		{1: {Parent: 0, Ticks: 200}, 2: {Parent: 1, Ticks: 50}},
	}}
	sm := New(r, 100)
	start := time.Now()
	clock := start
	sm.now = func() time.Time { return clock }
	_, _, err := sm.Tick()
	require.NoError(t, err)

	clock = start.Add(time.Second)
	r.n = 1
	_, loads, err := sm.Tick()
	require.NoError(t, err)
	assert.Equal(t, 0.0, loads[2])
	assert.InDelta(t, 1.0, loads[1], 1e-9)
}

func TestSampler_SkipOnCaptureFailure(t *testing.T) {
	r := &failingReader{}
	sm := New(r, 100)
	_, _, err := sm.Tick()
	require.Error(t, err)
}

type failingReader struct{}

func (*failingReader) ListPIDs() ([]int, error) { return nil, errors.New("capture failed") }
func (*failingReader) ReadEntry(int) (int, uint64, error) {
	return 0, 0, nil
}
