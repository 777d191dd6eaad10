package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/ja7ad/pidtree_mon/internal/aggregator"
	"github.com/ja7ad/pidtree_mon/internal/sampler"
	"github.com/ja7ad/pidtree_mon/internal/wire"
)

// TickPeriod is the monotonic pacing interval for sampling and fan-out.
const TickPeriod = time.Second

type client struct {
	conn  net.Conn
	roots []int
}

// Daemon owns the Sampler and every currently attached client. It has
// no exported mutable state: callers drive it entirely through Run.
//
// clients and nextID are touched only from the goroutine running Run's
// select loop, matching spec's single-threaded-execution discipline: no
// locking is required because registration and tick fan-out never run
// concurrently with each other.
type Daemon struct {
	ln     net.Listener
	sm     *sampler.Sampler
	numCPU int
	log    *slog.Logger

	clients map[int]*client
	nextID  int

	registered chan *client

	tickPeriod time.Duration // defaults to TickPeriod; overridable in tests
}

// New constructs a Daemon serving connections accepted from ln, backed
// by sm for load sampling and numCPU for the per-connection CPU count
// handshake.
func New(ln net.Listener, sm *sampler.Sampler, numCPU int, log *slog.Logger) *Daemon {
	if log == nil {
		log = slog.Default()
	}
	return &Daemon{
		ln:         ln,
		sm:         sm,
		numCPU:     numCPU,
		log:        log,
		clients:    make(map[int]*client),
		registered: make(chan *client),
		tickPeriod: TickPeriod,
	}
}

// Run accepts connections and drives the sampling loop until ctx is
// canceled, sampling fails (ErrShutdown), or the client set becomes and
// remains empty across one full tick. A failed Accept stops new
// connections from being accepted but does not by itself end Run.
func (d *Daemon) Run(ctx context.Context) error {
	acceptCtx, cancelAccept := context.WithCancel(ctx)
	defer cancelAccept()
	go d.acceptLoop(acceptCtx)

	ticker := time.NewTicker(d.tickPeriod)
	defer ticker.Stop()

	hadClient := false
	emptyStreak := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case c := <-d.registered:
			id := d.nextID
			d.nextID++
			d.clients[id] = c
			hadClient = true
			emptyStreak = 0
			d.log.Info("client attached", "client_id", id)

		case <-ticker.C:
			empty, err := d.tick()
			if err != nil {
				d.log.Error("sampling failed, shutting down", "err", err)
				return fmt.Errorf("%w: %w", ErrShutdown, err)
			}
			if !hadClient {
				continue
			}
			if empty {
				emptyStreak++
			} else {
				emptyStreak = 0
			}
			if emptyStreak >= 2 {
				d.log.Info("no clients remain, exiting")
				return nil
			}
		}
	}
}

func (d *Daemon) acceptLoop(ctx context.Context) {
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.log.Warn("accept failed", "err", err)
			return
		}
		go d.handshake(ctx, conn)
	}
}

// handshake runs the registration exchange (read roots, send CPU
// count) on its own goroutine per spec's one-task-per-client model, so
// a slow or misbehaving client cannot stall the sampling loop.
func (d *Daemon) handshake(ctx context.Context, conn net.Conn) {
	roots, err := wire.ReadRoots(conn)
	if err != nil {
		d.log.Warn("client registration failed", "err", err)
		conn.Close()
		return
	}
	if err := wire.WriteCPUCount(conn, d.numCPU); err != nil {
		d.log.Warn("client registration failed", "err", err)
		conn.Close()
		return
	}

	select {
	case d.registered <- &client{conn: conn, roots: roots}:
	case <-ctx.Done():
		conn.Close()
	}
}

// tick takes one sample, fans the result out to every registered
// client, deregisters any client whose write fails or that has hung
// up, and reports whether the client set is now empty.
func (d *Daemon) tick() (empty bool, err error) {
	snap, loads, err := d.sm.Tick()
	if err != nil {
		return false, err
	}

	for id, c := range d.clients {
		out := aggregator.SubtreeLoads(snap, loads, c.roots)
		if err := wire.WriteTickResult(c.conn, out); err != nil {
			c.conn.Close()
			delete(d.clients, id)
		}
	}
	return len(d.clients) == 0, nil
}
