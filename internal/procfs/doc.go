// Package procfs is the abstract boundary between pidtree_mon and the
// kernel's per-process accounting interface (Linux /proc). It exposes
// exactly what the rest of the module needs to build a process forest:
// the list of currently live PIDs, each PID's parent and accumulated CPU
// ticks, and the two host-wide constants (clock-tick rate, logical CPU
// count) that every load computation is normalized against.
//
// Per-process reads race process exit by nature — a PID can disappear
// between ListPIDs and ReadEntry. Callers are expected to skip, not
// propagate, individual read failures; that contract lives in
// internal/forest, not here.
package procfs
