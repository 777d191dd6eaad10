//go:build linux

// Package daemonctl ensures a daemon is reachable at a rendezvous
// point, self-spawning one on demand and retrying the connection with
// bounded backoff. It holds no domain logic: its only job is getting a
// net.Conn into the caller's hands.
package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ja7ad/pidtree_mon/internal/rendezvous"
)

// DaemonArg is the hidden subcommand argument used to re-exec the
// current binary in daemon role. The CLI layer wires this to a cobra
// command that never appears in --help output.
const DaemonArg = "__daemon"

// ErrAlreadyRunning is returned by Bind when another process won the
// race to bind the rendezvous socket first. It is not a failure: the
// caller spawned speculatively and should simply exit.
var ErrAlreadyRunning = errors.New("daemonctl: another daemon is already bound")

// Bind claims the rendezvous socket for the daemon role. Exactly one
// daemon per rendezvous point is enforced purely by this bind: the
// first caller to succeed owns the socket; every later caller either
// finds a live daemon already listening (ErrAlreadyRunning) or finds a
// stale socket file left by a crashed daemon, removes it, and retries.
func Bind(p rendezvous.Paths) (net.Listener, error) {
	ln, err := net.Listen("unix", p.SocketPath)
	if err == nil {
		return ln, nil
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		return nil, fmt.Errorf("daemonctl: bind: %w", err)
	}

	if conn, dialErr := net.Dial("unix", p.SocketPath); dialErr == nil {
		conn.Close()
		return nil, ErrAlreadyRunning
	}

	if err := os.Remove(p.SocketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("daemonctl: remove stale socket: %w", err)
	}
	ln, err = net.Listen("unix", p.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("daemonctl: bind after cleanup: %w", err)
	}
	return ln, nil
}

var (
	backoffStart = 20 * time.Millisecond
	backoffMax   = 500 * time.Millisecond
)

// Connect dials the rendezvous socket, spawning a daemon if nothing is
// listening yet, and retries with bounded exponential backoff until
// either a connection succeeds or ctx is done.
func Connect(ctx context.Context, p rendezvous.Paths) (net.Conn, error) {
	spawned := false
	delay := backoffStart

	for {
		conn, err := net.Dial("unix", p.SocketPath)
		if err == nil {
			return conn, nil
		}

		if !spawned {
			if err := Spawn(p); err != nil {
				return nil, fmt.Errorf("daemonctl: spawn: %w", err)
			}
			spawned = true
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("daemonctl: connect: %w", ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > backoffMax {
			delay = backoffMax
		}
	}
}

// Spawn re-execs the current binary with the hidden daemon subcommand
// and detaches it from the calling process's session so it outlives the
// client that triggered the spawn.
func Spawn(p rendezvous.Paths) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("daemonctl: locate self: %w", err)
	}

	cmd := exec.Command(exe, DaemonArg)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemonctl: start: %w", err)
	}
	return cmd.Process.Release()
}

// WritePID records the daemon's own PID at p.PIDPath for diagnostic
// purposes. It is informational only: exclusivity is enforced by the
// rendezvous socket's bind semantics, not by this file.
func WritePID(p rendezvous.Paths) error {
	return os.WriteFile(p.PIDPath, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

// IsAlive reports whether the PID recorded at p.PIDPath refers to a
// live process. It does not guarantee that process is actually the
// daemon; callers should treat this as a best-effort diagnostic check.
func IsAlive(p rendezvous.Paths) bool {
	data, err := os.ReadFile(p.PIDPath)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false
	}
	return unix.Kill(pid, 0) == nil
}
