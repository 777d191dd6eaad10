package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/ja7ad/pidtree_mon/internal/daemonctl"
	"github.com/ja7ad/pidtree_mon/internal/rendezvous"
	"github.com/ja7ad/pidtree_mon/internal/wire"
)

// Formatter renders one TickResult — a vector of SubtreeLoad values,
// one per registered root PID, plus the logical CPU count — into the
// output line for that tick.
type Formatter interface {
	Format(loads []float64, numCPU int) (string, error)
}

// Client holds the connection for one client session and the CPU count
// the daemon sent back at registration.
type Client struct {
	conn   net.Conn
	numCPU int
}

// Connect resolves the rendezvous point, connects to the daemon
// (spawning it if necessary), submits roots, and performs the
// registration handshake.
func Connect(ctx context.Context, roots []int) (*Client, error) {
	p, err := rendezvous.Resolve()
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	conn, err := daemonctl.Connect(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	if err := wire.WriteRoots(conn, roots); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: submit roots: %w", err)
	}

	numCPU, err := wire.ReadCPUCount(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: read cpu count: %w", err)
	}

	return &Client{conn: conn, numCPU: numCPU}, nil
}

// Close releases the client's connection to the daemon.
func (c *Client) Close() error { return c.conn.Close() }

// Run drives every TickResult received from the daemon through f and
// writes the formatted line, terminated by a newline, to w. It returns
// nil when ctx is done or the daemon disconnects cleanly (both are
// spec'd as a zero exit), and a non-nil error on a write failure to w
// or a malformed frame from the daemon.
func (c *Client) Run(ctx context.Context, w io.Writer, f Formatter) error {
	results := make(chan []float64)
	readErr := make(chan error, 1)

	go func() {
		for {
			loads, err := wire.ReadTickResult(c.conn)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case results <- loads:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("client: daemon disconnected: %w", err)

		case loads := <-results:
			line, err := f.Format(loads, c.numCPU)
			if err != nil {
				return fmt.Errorf("client: format: %w", err)
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return fmt.Errorf("client: write stdout: %w", err)
			}
		}
	}
}
