package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/orrery/engine"
	"github.com/lixenwraith/orrery/metrics"
	"github.com/lixenwraith/orrery/stream"
)

const (
	shutdownTimeout = 5 * time.Second
	commandsPerSec  = 20
	commandBurst    = 10
)

func serveCmd(flags *hostFlags) *cobra.Command {
	var (
		addr        string
		metricsAddr string
		hz          float64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run headless and stream snapshots over WebSocket",
		Long: `Serve runs the simulation without a terminal.
Clients connect to /ws for snapshots and mode events and send JSON commands back.
GET /snapshot returns the latest frame; /metrics is served on the metrics address when set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.StreamAddr = addr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("hz") {
				cfg.StreamHz = hz
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := log.New(os.Stderr, "", log.LstdFlags)
			if cfg.Debug {
				logDir = cfg.LogDir
				if f := setupLogging(true); f != nil {
					defer f.Close()
					logger = log.Default()
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			hub := stream.Config{PublishHz: cfg.StreamHz, AllowedOrigins: cfg.StreamOrigins}
			return serve(ctx, cfg.StreamAddr, cfg.MetricsAddr, hub, cfg.FrameInterval(), func(extra ...engine.Option) (*engine.SimulationContext, error) {
				sim, _, err := newSimulation(cfg, logger, extra...)
				return sim, err
			}, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "stream listen address (default from ORRERY_STREAM_ADDR)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "metrics listen address, empty disables")
	cmd.Flags().Float64Var(&hz, "hz", 0, "snapshot broadcast rate, 0 is every frame")
	return cmd
}

// server bundles the hub, the latest snapshot and the loop hooks of a headless host
type server struct {
	hub    *stream.Hub
	latest atomic.Pointer[engine.Snapshot]
	logger *log.Logger
}

// newServer creates the hub from cfg with the host's command limits and logger
func newServer(cfg stream.Config, logger *log.Logger) *server {
	cfg.CommandsPerSec = commandsPerSec
	cfg.CommandBurst = commandBurst
	cfg.Logger = logger
	return &server{
		hub:    stream.NewHub(cfg),
		logger: logger,
	}
}

// beforeTick applies queued client commands
func (s *server) beforeTick(sim *engine.SimulationContext) {
	s.hub.Drain(func(c stream.Command) {
		if err := c.Apply(sim); err != nil {
			s.logger.Printf("command %s: %v", c.Op, err)
		}
	})
}

// afterTick stores and publishes the frame
func (s *server) afterTick(sim *engine.SimulationContext) {
	snap := sim.Snapshot()
	s.latest.Store(&snap)
	s.hub.Publish(snap)
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/snapshot", s.serveSnapshot)
	return mux
}

func (s *server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.latest.Load()
	if snap == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Printf("snapshot: %v", err)
	}
}

// serve runs the stream and metrics listeners and the frame loop until ctx is done
func serve(ctx context.Context, addr, metricsAddr string, hub stream.Config, interval time.Duration,
	build func(...engine.Option) (*engine.SimulationContext, error), logger *log.Logger) error {
	s := newServer(hub, logger)
	defer s.hub.Close()

	opts := []engine.Option{engine.WithObserver(s.hub)}

	var servers []*http.Server
	if metricsAddr != "" {
		collector := metrics.NewCollector()
		opts = append(opts, engine.WithObserver(collector))
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		servers = append(servers, &http.Server{Addr: metricsAddr, Handler: mux})
	}
	servers = append(servers, &http.Server{Addr: addr, Handler: s.handler()})

	sim, err := build(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Printf("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
				cancel()
			}
		}(srv)
	}

	loop := &engine.Loop{
		Sim:        sim,
		Interval:   interval,
		BeforeTick: s.beforeTick,
		AfterTick:  s.afterTick,
	}
	runErr := loop.Run(ctx)

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown %s: %v", srv.Addr, err)
		}
	}

	select {
	case err := <-errCh:
		return err
	default:
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
