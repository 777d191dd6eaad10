//go:build linux

package daemonctl

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/pidtree_mon/internal/rendezvous"
)

func testPaths(t *testing.T) rendezvous.Paths {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	p, err := rendezvous.Resolve()
	require.NoError(t, err)
	return p
}

func TestWritePID_IsAlive(t *testing.T) {
	p := testPaths(t)
	require.NoError(t, WritePID(p))
	assert.True(t, IsAlive(p))
}

func TestIsAlive_NoPIDFile(t *testing.T) {
	p := testPaths(t)
	assert.False(t, IsAlive(p))
}

func TestIsAlive_DeadPID(t *testing.T) {
	p := testPaths(t)
	// PID 1 is init on a real system; pick a PID unlikely to exist instead.
	require.NoError(t, os.WriteFile(p.PIDPath, []byte(strconv.Itoa(1<<30)), 0o600))
	assert.False(t, IsAlive(p))
}

func TestIsAlive_GarbagePIDFile(t *testing.T) {
	p := testPaths(t)
	require.NoError(t, os.WriteFile(p.PIDPath, []byte("not-a-pid"), 0o600))
	assert.False(t, IsAlive(p))
}
