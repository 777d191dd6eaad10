// Package wire implements the frame codec between client and daemon
// over the host-local byte-stream channel from spec section 6. Framing
// is an implementation choice the spec leaves open as long as the
// logical message sequence is preserved; this codec uses little-endian
// length-prefixed vectors throughout, matching the byte-oriented style
// of the protocol description itself.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WriteRoots sends the client's root-PID vector: a 32-bit count prefix
// followed by that many little-endian 32-bit PIDs.
func WriteRoots(w io.Writer, roots []int) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(roots))); err != nil {
		return fmt.Errorf("wire: write root count: %w", err)
	}
	for _, pid := range roots {
		if err := binary.Write(w, binary.LittleEndian, int32(pid)); err != nil {
			return fmt.Errorf("wire: write root pid: %w", err)
		}
	}
	return nil
}

// ReadRoots reads a root-PID vector written by WriteRoots.
func ReadRoots(r io.Reader) ([]int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("wire: read root count: %w", err)
	}
	roots := make([]int, n)
	for i := range roots {
		var pid int32
		if err := binary.Read(r, binary.LittleEndian, &pid); err != nil {
			return nil, fmt.Errorf("wire: read root pid: %w", err)
		}
		roots[i] = int(pid)
	}
	return roots, nil
}

// WriteCPUCount sends the logical CPU count, once, immediately after
// registration and before any TickResult.
func WriteCPUCount(w io.Writer, numCPU int) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(numCPU)); err != nil {
		return fmt.Errorf("wire: write cpu count: %w", err)
	}
	return nil
}

// ReadCPUCount reads the logical CPU count sent by WriteCPUCount.
func ReadCPUCount(r io.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("wire: read cpu count: %w", err)
	}
	return int(n), nil
}

// WriteTickResult sends one tick's subtree-load vector: a 32-bit length
// prefix followed by that many little-endian 64-bit IEEE-754 loads.
func WriteTickResult(w io.Writer, loads []float64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(loads))); err != nil {
		return fmt.Errorf("wire: write tick length: %w", err)
	}
	for _, v := range loads {
		if err := binary.Write(w, binary.LittleEndian, math.Float64bits(v)); err != nil {
			return fmt.Errorf("wire: write tick value: %w", err)
		}
	}
	return nil
}

// ReadTickResult reads one tick's subtree-load vector written by
// WriteTickResult.
func ReadTickResult(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("wire: read tick length: %w", err)
	}
	loads := make([]float64, n)
	for i := range loads {
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, fmt.Errorf("wire: read tick value: %w", err)
		}
		loads[i] = math.Float64frombits(bits)
	}
	return loads, nil
}
