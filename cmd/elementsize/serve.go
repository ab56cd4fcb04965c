package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/elementsize/internal/config"
	"github.com/vango-dev/elementsize/internal/errors"
	"github.com/vango-dev/elementsize/pkg/archive"
	"github.com/vango-dev/elementsize/pkg/hooks"
	"github.com/vango-dev/elementsize/pkg/metrics"
	"github.com/vango-dev/elementsize/pkg/resize"
	"github.com/vango-dev/elementsize/pkg/server"
)

type serveOptions struct {
	dir       string
	addr      string
	frameRate int
	debug     bool
	nodes     []string
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve remote size tracking over WebSocket",
		Long: `Serve accepts browser clients on /ws. Each client is asked to
observe the nodes named by its ?node= query parameters (plus any
--node flags) and every size change is logged.

Settings come from elementsize.json in --config-dir; flags override.

Examples:
  elementsize serve
  elementsize serve --addr=:9000 --frame-rate=30
  elementsize serve --node=header --node=sidebar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, opts.nodes)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "config-dir", "C", ".", "Directory containing elementsize.json")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from elementsize.json)")
	cmd.Flags().IntVar(&opts.frameRate, "frame-rate", 0, "Frame flushes per second (default from elementsize.json)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging and hook order checks")
	cmd.Flags().StringSliceVar(&opts.nodes, "node", nil, "Node ID every client is asked to observe (repeatable)")

	return cmd
}

func loadServeConfig(cmd *cobra.Command, opts serveOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.dir)
	if err != nil {
		return nil, err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if cmd.Flags().Changed("frame-rate") {
		cfg.FrameRate = opts.frameRate
	}
	if opts.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config, nodes []string) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	hooks.DebugMode = cfg.Debug

	if cfg.Path() != "" {
		logger.Info("loaded config", "path", cfg.Path())
	}

	onSize := func(s *server.Session, node string, size *resize.Size) {
		if size == nil {
			s.Logger().Info("size cleared", "node", node)
			return
		}
		s.Logger().Info("size changed", "node", node, "size", size.String())
	}

	srvCfg := &server.Config{
		Addr:           cfg.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout.Std(),
		WriteTimeout:   cfg.Server.WriteTimeout.Std(),
		MaxMessageSize: cfg.Server.MaxMessageSize,
		FrameInterval:  cfg.FrameInterval(),
		CheckOrigin:    server.AllowOrigins(cfg.Server.AllowedOrigins),
		MetricsPath:    cfg.Metrics.Path,
		TracerName:     cfg.Tracing.TracerName,
		Logger:         logger,
		Mount: func(s *server.Session) {
			server.TrackNodes(onSize, nodes...)(s)
			server.TrackQueryNodes(onSize)(s)
		},
	}

	if cfg.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		srvCfg.Recorder = metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		srvCfg.Gatherer = reg
	}
	store, err := openArchive(cfg.Archive)
	if err != nil {
		return err
	}
	srvCfg.Archive = store

	if !cfg.Tracing.Enabled {
		srvCfg.TracerProvider = noop.NewTracerProvider()
	}

	if err := server.New(srvCfg).Run(ctx); err != nil {
		return errors.New("E401").Wrap(err)
	}
	return nil
}

// openArchive returns the configured timeline store, or nil when archiving
// is off.
func openArchive(cfg config.ArchiveConfig) (archive.Store, error) {
	switch {
	case cfg.S3.Bucket != "":
		client := archive.NewS3Client(cfg.S3.Region, cfg.S3.Endpoint)
		return archive.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
	case cfg.Dir != "":
		return archive.NewDiskStore(cfg.Dir)
	default:
		return nil, nil
	}
}
