package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/internal/demo"
	"github.com/aretw0/weaver/internal/presentation/tui"
	httpAdapter "github.com/aretw0/weaver/pkg/adapters/http"
	"github.com/aretw0/weaver/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/weaver/pkg/adapters/redis"
	"github.com/aretw0/weaver/pkg/advice"
	"github.com/aretw0/weaver/pkg/observability"
	"github.com/aretw0/weaver/pkg/plan"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	planPath  string
	addr      string
	redisAddr string
	tick      time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo namespace with live introspection",
	Long: `Augments the demo "greetings" namespace with the given plan, calls its
functions periodically and exposes bindings, lifecycle events, the journal
and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		opts := serveOptions{addr: ":" + port}
		opts.planPath, _ = cmd.Flags().GetString("plan")
		opts.redisAddr, _ = cmd.Flags().GetString("redis")
		opts.tick, _ = cmd.Flags().GetDuration("tick")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tui.PrintBanner(cmd.OutOrStdout())
		return serve(ctx, opts, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("plan", "", "Augmentation plan to apply to the demo namespace")
	serveCmd.Flags().String("redis", "", "Redis address for the journal and locks (in-memory when empty)")
	serveCmd.Flags().Duration("tick", 2*time.Second, "Interval between demo calls (0 disables them)")
}

// backends returns the journal and locker, backed by Redis when addr is set.
func backends(ctx context.Context, addr string) (ports.Journal, ports.DistributedLocker, func() error, error) {
	if addr == "" {
		return memory.NewJournal(memory.DefaultJournalCapacity), memory.NewLocker(), func() error { return nil }, nil
	}
	client := backend.NewClient(&backend.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return redisAdapter.NewFromClient(client), redisAdapter.NewLocker(client, "weaver:"), client.Close, nil
}

func serve(ctx context.Context, opts serveOptions, logger *slog.Logger, out io.Writer) error {
	journal, locker, closeBackends, err := backends(ctx, opts.redisAddr)
	if err != nil {
		return err
	}
	defer closeBackends()

	metrics := observability.NewMetrics()
	callSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weaver",
		Name:      "advice_call_seconds",
		Help:      "Duration of calls observed by time advice",
	}, advice.TimeLabels)
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics, callSeconds, collectors.NewGoCollector())

	streams := httpAdapter.NewStreamManager(logger)
	w := weaver.New(
		weaver.WithLogger(logger),
		weaver.WithJournal(journal),
		weaver.WithLifecycleHooks(metrics.Hooks()),
		weaver.WithLifecycleHooks(streams.Hooks()),
	)
	defer func() {
		if err := w.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("restore on shutdown failed", "error", err)
		}
	}()

	ns := demo.Greetings()
	if opts.planPath != "" {
		p, err := plan.Load(opts.planPath)
		if err != nil {
			return err
		}
		catalog := plan.DefaultCatalog(plan.Deps{Logger: logger, Observer: callSeconds, Locker: locker})
		applied, err := plan.Apply(ctx, w, p, catalog, ns)
		if err != nil {
			return err
		}
		logger.Info("plan applied", "path", opts.planPath, "targets", len(applied.Targets()))
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler: httpAdapter.NewHandler(w,
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithJournal(journal),
			httpAdapter.WithLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	fmt.Fprintf(out, "Starting Weaver Server on %s\n", ln.Addr())
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	if opts.tick > 0 {
		go callDemo(ctx, ns.Names(), func(name string) error {
			_, err := ns.Call(ctx, name, "weaver")
			return err
		}, opts.tick, logger)
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Fprintln(out, "\nStart shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		fmt.Fprintln(out, "Weaver Server stopped gracefully")
		return nil
	}
}

// callDemo calls every demo function once per tick until ctx is done.
func callDemo(ctx context.Context, names []string, call func(string) error, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, name := range names {
				if err := call(name); err != nil {
					logger.Debug("demo call failed", "name", name, "error", err)
				}
			}
		}
	}
}
