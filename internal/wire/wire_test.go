package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoots_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoots(&buf, []int{1, 42, 99}))

	got, err := ReadRoots(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 42, 99}, got)
}

func TestRoots_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoots(&buf, nil))

	got, err := ReadRoots(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCPUCount_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCPUCount(&buf, 16))

	got, err := ReadCPUCount(&buf)
	require.NoError(t, err)
	assert.Equal(t, 16, got)
}

func TestTickResult_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	loads := []float64{0.9, 1.9, 0.0}
	require.NoError(t, WriteTickResult(&buf, loads))

	got, err := ReadTickResult(&buf)
	require.NoError(t, err)
	assert.Equal(t, loads, got)
}

func TestTickResult_Truncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTickResult(&buf, []float64{1, 2, 3}))

	truncated := bytes.NewReader(buf.Bytes()[:6])
	_, err := ReadTickResult(truncated)
	assert.Error(t, err)
}

func TestSequence_RootsThenCPUThenTicks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoots(&buf, []int{7}))
	require.NoError(t, WriteCPUCount(&buf, 4))
	require.NoError(t, WriteTickResult(&buf, []float64{2.5}))
	require.NoError(t, WriteTickResult(&buf, []float64{3.0}))

	roots, err := ReadRoots(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, roots)

	cpus, err := ReadCPUCount(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, cpus)

	t1, err := ReadTickResult(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, t1)

	t2, err := ReadTickResult(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.0}, t2)
}
