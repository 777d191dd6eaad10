//go:build linux

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Host implements the forest.Reader interface against the real kernel
// /proc filesystem. It carries no state; its methods are thin wrappers
// around the package-level functions below.
type Host struct{}

// ListPIDs satisfies forest.Reader.
func (Host) ListPIDs() ([]int, error) { return ListPIDs() }

// ReadEntry satisfies forest.Reader.
func (Host) ReadEntry(pid int) (int, uint64, error) { return ReadEntry(pid) }

// ClockTicks returns the number of jiffies (clock ticks) per second.
// It first checks the env var CLK_TCK (useful for testing), otherwise
// falls back to 100, the default on every Linux platform pidtree_mon
// targets.
//
// Note: the authoritative source is sysconf(_SC_CLK_TCK), but calling
// that requires cgo. For a pure-Go build this simplified approach is
// acceptable — the daemon reads it once at startup and caches it.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// NumCPU returns the number of logical CPUs visible to this process.
func NumCPU() int {
	return runtime.NumCPU()
}

// Exists reports whether a given PID currently exists in /proc.
func Exists(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

// ListPIDs enumerates every currently live PID by scanning /proc for
// numeric directory entries.
func ListPIDs() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("procfs: read /proc: %w", err)
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue // not a PID directory (self, net, etc.)
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// ReadEntry parses /proc/<pid>/stat and returns the parent PID and the
// accumulated user+system CPU time in clock ticks since process start.
//
// Caveats:
//   - Field order is fixed, but comm (2nd field) is in parens and may
//     contain spaces or even unbalanced parens; we strip everything up
//     to the last ") " to stay safe.
//   - Returns a uint64 tick counter (monotonic increasing).
func ReadEntry(pid int) (ppid int, ticks uint64, err error) {
	f, e := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, ErrNoStat
	}
	line := sc.Text()

	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, 0, ErrNoStat
	}
	fields := strings.Fields(line[i+2:])

	get := func(idx int) (uint64, error) {
		if idx >= len(fields) {
			return 0, ErrShortStat
		}
		return strconv.ParseUint(fields[idx], 10, 64)
	}

	// Indexes below are relative to fields[0] == state (3rd field overall):
	// ppid (4th overall)  => fields[1]
	// utime (14th overall) => fields[11]
	// stime (15th overall) => fields[12]
	ppid64, err := get(1)
	if err != nil {
		return 0, 0, err
	}
	utime, err := get(11)
	if err != nil {
		return 0, 0, err
	}
	stime, err := get(12)
	if err != nil {
		return 0, 0, err
	}
	return int(ppid64), utime + stime, nil
}
