package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/funcmetrics/funcmetrics/internal/config"
	"github.com/funcmetrics/funcmetrics/internal/metrics"
	"github.com/funcmetrics/funcmetrics/internal/view"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "funcmetrics",
		Short: "Record and inspect per-call execution metrics in an embedded store",
	}

	var configFile string
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: funcmetrics.yaml)")

	// ─── view ───
	var limit int
	var filterExpr string
	var follow bool
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Print the most recent metric records as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(configFile, limit, filterExpr, follow)
		},
	}
	viewCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of records to show (default from config)")
	viewCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", `CEL filter, e.g. 'status == "error" && duration_ms > 100'`)
	viewCmd.Flags().BoolVar(&follow, "follow", false, "Re-render the table whenever the store changes")

	// ─── demo ───
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run sample instrumented functions and print their metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(configFile)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("funcmetrics %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}

	rootCmd.AddCommand(viewCmd, demoCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and builds the logger every command shares.
func setup(configFile string) (*config.Config, *slog.Logger, error) {
	loader := config.NewLoader()
	if configFile == "" {
		configFile = "funcmetrics.yaml"
	}
	if err := loader.Load(configFile); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := loader.Get()

	logLevel := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	return cfg, logger, nil
}

func runDemo(configFile string) error {
	cfg, logger, err := setup(configFile)
	if err != nil {
		return err
	}

	handle := metrics.NewHandle(cfg.Storage.Path, logger)
	defer func() { _ = handle.Close() }()
	recorder := metrics.NewRecorder(handle, logger)

	runID := ulid.Make().String()
	logger.Info("starting demo run", "run_id", runID, "store", cfg.Storage.Path)

	sample := metrics.Instrument(recorder, "sample_function", func() (string, error) {
		time.Sleep(time.Second)
		return "Success", nil
	})
	failing := metrics.InstrumentFunc(recorder, "failing_function", func() error {
		return errors.New("Sample error")
	})

	for i := 0; i < 3; i++ {
		fmt.Println("\nRunning sample function...")
		if _, err := sample(); err != nil {
			fmt.Printf("Error in sample function: %v\n", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("\nRunning failing function...")
	if err := failing(); err != nil {
		fmt.Printf("Error in failing function: %v\n", err)
	}

	reader := metrics.NewReader(handle, logger)
	fmt.Printf("\nFunction execution metrics (last %d calls):\n", cfg.View.Limit)
	fmt.Println(view.RecentMetrics(reader, nil, cfg.View.Limit))
	return nil
}

func runView(configFile string, limit int, filterExpr string, follow bool) error {
	cfg, logger, err := setup(configFile)
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.View.Limit
	}

	handle := metrics.NewHandle(cfg.Storage.Path, logger)
	defer func() { _ = handle.Close() }()
	reader := metrics.NewReader(handle, logger)

	var filter *view.Filter
	if filterExpr != "" {
		filter, err = view.CompileFilter(filterExpr)
		if err != nil {
			return err
		}
	}

	fmt.Println(view.RecentMetrics(reader, filter, limit))
	if !follow {
		return nil
	}

	changed := make(chan struct{}, 1)
	follower, err := view.NewFollower(cfg.Storage.Path, logger, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer follower.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-changed:
			// Coalesce the burst of events one insert produces.
			time.Sleep(200 * time.Millisecond)
			select {
			case <-changed:
			default:
			}
			fmt.Println(view.RecentMetrics(reader, filter, limit))
		case <-sigCh:
			return nil
		}
	}
}
