// Package rendezvous derives the per-user filesystem paths the daemon
// and its clients use to find each other: a Unix domain socket and a
// PID file. Keying both off the effective UID keeps daemons for
// different users on the same host from colliding or attaching to the
// wrong process tree.
package rendezvous

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Paths holds the rendezvous locations for the calling user.
type Paths struct {
	Dir        string
	SocketPath string
	PIDPath    string
}

// Resolve computes the rendezvous paths for the effective user running
// the current process. It prefers $XDG_RUNTIME_DIR, the conventional
// per-user scratch directory on Linux, and falls back to the system
// temp directory when unset.
func Resolve() (Paths, error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
	}

	dir := filepath.Join(base, fmt.Sprintf("pidtree_mon-%d", unix.Geteuid()))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Paths{}, fmt.Errorf("rendezvous: create %s: %w", dir, err)
	}

	return Paths{
		Dir:        dir,
		SocketPath: filepath.Join(dir, "daemon.sock"),
		PIDPath:    filepath.Join(dir, "daemon.pid"),
	}, nil
}
