package forest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	pids    []int
	entries map[int]Entry
	fail    map[int]bool
}

func (f fakeReader) ListPIDs() ([]int, error) { return f.pids, nil }

func (f fakeReader) ReadEntry(pid int) (int, uint64, error) {
	if f.fail[pid] {
		return 0, 0, errors.New("exited mid-read")
	}
	e, ok := f.entries[pid]
	if !ok {
		return 0, 0, errors.New("unknown pid")
	}
	return e.Parent, e.Ticks, nil
}

func TestCapture_SkipsFailedReads(t *testing.T) {
	r := fakeReader{
		pids: []int{1, 42, 99},
		entries: map[int]Entry{
			1:  {Parent: 0, Ticks: 2100},
			99: {Parent: 42, Ticks: 130},
		},
		fail: map[int]bool{42: true},
	}
	snap, err := Capture(r)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Contains(t, snap.Entries, 1)
	assert.Contains(t, snap.Entries, 99)
	assert.NotContains(t, snap.Entries, 42)
}

func TestCapture_ListError(t *testing.T) {
	r := fakeReaderListErr{}
	_, err := Capture(r)
	require.Error(t, err)
}

type fakeReaderListErr struct{}

func (fakeReaderListErr) ListPIDs() ([]int, error) { return nil, errors.New("boom") }
func (fakeReaderListErr) ReadEntry(int) (int, uint64, error) {
	return 0, 0, nil
}
