//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/pidtree_mon/internal/client"
	"github.com/ja7ad/pidtree_mon/internal/daemon"
	"github.com/ja7ad/pidtree_mon/internal/daemonctl"
	"github.com/ja7ad/pidtree_mon/internal/field"
	"github.com/ja7ad/pidtree_mon/internal/procfs"
	"github.com/ja7ad/pidtree_mon/internal/rendezvous"
	"github.com/ja7ad/pidtree_mon/internal/sampler"
)

const version = "0.1.0"

type opts struct {
	timeout   int
	fields    []string
	separator string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:     "pidtree_mon PID [PID...]",
		Short:   "Per-subtree CPU load monitor",
		Version: version,
		Long: `pidtree_mon watches the CPU load of one or more process trees, identified
by their root PIDs, and prints one formatted line per sampling tick.

A daemon process is started on demand and shared by every client
running as the same user; it owns the sampling loop and exits once its
last client disconnects.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, args)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("pidtree_mon %s\n", version))
	root.Flags().IntVarP(&o.timeout, "timeout", "t", 0, "exit after SECS seconds (0 = run until daemon disconnects)")
	root.Flags().StringArrayVarP(&o.fields, "field", "f", []string{"sum", "all_loads"}, "append an output field (repeatable)")
	root.Flags().StringVarP(&o.separator, "separator", "s", " ", "field separator")
	root.Flags().BoolP("version", "V", false, "print the version and exit")

	root.AddCommand(daemonCmd())

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// daemonCmd is never shown in --help; it's the role the client re-execs
// itself into when no daemon is reachable at the rendezvous socket.
func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:    daemonctl.DaemonArg,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
}

func run(ctx context.Context, o opts, args []string) error {
	roots, err := parsePIDs(args)
	if err != nil {
		return err
	}

	specs := make([]field.Spec, len(o.fields))
	for i, spec := range o.fields {
		s, err := field.Parse(spec)
		if err != nil {
			return fmt.Errorf("invalid field %q: %w", spec, err)
		}
		specs[i] = s
	}
	line := field.Line{Specs: specs, Sep: o.separator}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.timeout)*time.Second)
		defer cancel()
	}

	c, err := client.Connect(ctx, roots)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	return c.Run(ctx, os.Stdout, line)
}

func parsePIDs(args []string) ([]int, error) {
	pids := make([]int, len(args))
	for i, a := range args {
		pid, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid PID %q: %w", a, err)
		}
		if pid < 0 {
			return nil, fmt.Errorf("invalid PID %q: must be non-negative", a)
		}
		pids[i] = pid
	}
	return pids, nil
}

func runDaemon(ctx context.Context) error {
	p, err := rendezvous.Resolve()
	if err != nil {
		return err
	}

	ln, err := daemonctl.Bind(p)
	if err != nil {
		if errors.Is(err, daemonctl.ErrAlreadyRunning) {
			return nil
		}
		return err
	}
	defer ln.Close()
	defer os.Remove(p.SocketPath)

	if err := daemonctl.WritePID(p); err != nil {
		slog.Warn("write pid file", "err", err)
	}
	defer os.Remove(p.PIDPath)

	sm := sampler.New(procfs.Host{}, procfs.ClockTicks())
	d := daemon.New(ln, sm, procfs.NumCPU(), slog.Default())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
