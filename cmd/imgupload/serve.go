package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/imgupload/internal/config"
	"github.com/vango-dev/imgupload/internal/errors"
	"github.com/vango-dev/imgupload/pkg/liveview"
	"github.com/vango-dev/imgupload/pkg/middleware"
	"github.com/vango-dev/imgupload/pkg/receiver"
	"github.com/vango-dev/imgupload/pkg/upload"
)

const shutdownTimeout = 10 * time.Second

// serveOptions holds the serve command flags.
type serveOptions struct {
	configPath string
	addr       string
	storeDir   string
	s3Bucket   string
	s3Prefix   string
}

func serveCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload page with a development receiver",
		Long: `Serve the drag-and-drop upload page together with a development
upload endpoint.

Routes:
  /               upload page
  /ws             live page connection
  /upload         receiver (multipart POST)
  /uploads/{id}   stored files
  /metrics        Prometheus metrics

Files are kept under --store-dir, or in S3 when --s3-bucket is set
(credentials and region come from the AWS environment; set
IMGUPLOAD_S3_ENDPOINT for S3-compatible services). Stored files are
removed after server.tempExpiry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(opts.configPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: imgupload.json or imgupload.yaml if present)")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", config.DefaultAddr, "Listen address")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", config.DefaultStoreDir, "Directory for uploaded files")
	cmd.Flags().StringVar(&opts.s3Bucket, "s3-bucket", "", "Store uploads in this S3 bucket instead of --store-dir")
	cmd.Flags().StringVar(&opts.s3Prefix, "s3-prefix", config.DefaultS3Prefix, "Key prefix inside the S3 bucket")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (o *serveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = o.addr
	}
	if flags.Changed("store-dir") {
		cfg.Server.StoreDir = o.storeDir
	}
	if flags.Changed("s3-bucket") {
		cfg.Server.S3Bucket = o.s3Bucket
	}
	if flags.Changed("s3-prefix") {
		cfg.Server.S3Prefix = o.s3Prefix
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := slog.Default().With("component", "serve")

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	external := cfg.UploadURL != ""
	if !external {
		cfg.UploadURL = localUploadURL(cfg.Server.Addr)
	}
	if cfg.CSRFToken == "" {
		cfg.CSRFToken = uuid.NewString()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newServeHandler(cfg, store, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go cleanupLoop(ctx, store, cfg.TempExpiry(), logger)

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success("Serving on http://%s", displayAddr(cfg.Server.Addr))
	if external {
		warn("Page uploads go to %s, not to this server's receiver", cfg.UploadURL)
	} else {
		info("Uploads go to %s", cfg.UploadURL)
	}
	if cfg.Server.S3Bucket != "" {
		info("Storing in s3://%s/%s", cfg.Server.S3Bucket, cfg.Server.S3Prefix)
	} else {
		info("Storing in %s", cfg.Server.StoreDir)
	}

	select {
	case err := <-errCh:
		return errors.New("E302").Wrap(err)
	case <-sigCh:
		fmt.Println()
		info("Shutting down...")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("E302").Wrap(err)
	}
	return nil
}

// newServeHandler wires the page, the live connection and the receiver
// onto one router. cfg must carry the upload URL and CSRF token the page
// widgets should use.
func newServeHandler(cfg *config.Config, store receiver.Store, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	widgetMetrics := upload.NewMetrics(upload.WithRegistry(reg))
	receiverMetrics := receiver.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.OpenTelemetry(
		middleware.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	))
	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))

	r.Get("/", liveview.PageHandler())
	r.Get("/client.js", liveview.ScriptHandler())
	r.Handle("/ws", liveview.Handler(
		func(*http.Request) *upload.Config { return cfg.UploadConfig() },
		liveview.WithLogger(logger.With("component", "liveview")),
		liveview.WithWidgetOptions(upload.WithMetrics(widgetMetrics)),
	))

	r.Method(http.MethodPost, "/upload", receiver.Handler(store, cfg.ReceiverConfig(),
		receiver.WithLogger(logger.With("component", "receiver")),
		receiver.WithMetrics(receiverMetrics),
	))
	r.Method(http.MethodGet, "/uploads/{id}", receiver.FileHandler(store,
		receiver.WithLogger(logger.With("component", "receiver")),
	))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

// openStore returns the S3 store when a bucket is configured and the
// disk store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (receiver.Store, error) {
	if cfg.Server.S3Bucket != "" {
		store, err := receiver.NewS3StoreFromEnv(ctx, cfg.Server.S3Bucket, cfg.Server.S3Prefix, cfg.MaxSize)
		if err != nil {
			return nil, errors.New("E301").
				WithDetail("bucket " + cfg.Server.S3Bucket).
				WithSuggestion("Check AWS_REGION and your AWS credentials").
				Wrap(err)
		}
		return store, nil
	}
	store, err := receiver.NewDiskStore(cfg.Server.StoreDir, cfg.MaxSize)
	if err != nil {
		return nil, errors.New("E301").WithDetail("directory " + cfg.Server.StoreDir).Wrap(err)
	}
	return store, nil
}

// cleanupLoop removes expired uploads until ctx is done.
func cleanupLoop(ctx context.Context, store receiver.Store, maxAge time.Duration, logger *slog.Logger) {
	interval := maxAge / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx, maxAge); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
	}
}

// localUploadURL is the receiver URL on addr as seen from this machine.
func localUploadURL(addr string) string {
	return "http://" + displayAddr(addr) + "/upload"
}

// displayAddr replaces an empty or wildcard host with localhost.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
