package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/vaultkeep/pkg/config"
	"github.com/cuemby/vaultkeep/pkg/engine"
	"github.com/cuemby/vaultkeep/pkg/events"
	"github.com/cuemby/vaultkeep/pkg/fsgateway"
	"github.com/cuemby/vaultkeep/pkg/log"
	"github.com/cuemby/vaultkeep/pkg/metrics"
	"github.com/cuemby/vaultkeep/pkg/store"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vaultkeep",
	Short: "vaultkeep - content-addressed backup engine for local directory trees",
	Long: `vaultkeep captures point-in-time snapshots of a directory tree,
deduplicating identical file contents across the entire history, and can
later list, restore, prune, and verify those snapshots.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("vaultkeep version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Raise log verbosity to debug")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("store", "", "Path to the backup store (overrides config and the ./backup.db default)")
	rootCmd.PersistentFlags().String("config", "", "Path to vaultkeep.yaml (defaults to ./vaultkeep.yaml if present)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "If set, serve Prometheus metrics and health endpoints at this address")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inspectCmd)
}

func initLogging() {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	log.Init(log.Config{Level: level, JSONOutput: logJSON})
}

// loadConfig resolves vaultkeep.yaml per the --config/--store flags and
// the search order documented in pkg/config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if storePath, _ := cmd.Flags().GetString("store"); storePath != "" {
		cfg.Store = storePath
	}
	return cfg, nil
}

// openEngine opens the store at cfg.Store and constructs a BackupEngine
// over it. Callers must Close() the returned store when done.
func openEngine(cfg config.Config) (*engine.BackupEngine, *store.Store, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	broker := events.NewBroker()
	broker.Start()
	sub := broker.Subscribe()
	go printProgress(sub)

	eng := engine.New(st, fsgateway.New(), broker,
		engine.WithExcludePatterns(cfg.Exclude),
		engine.WithProgressInterval(cfg.ProgressInterval),
	)
	return eng, st, nil
}

func printProgress(sub events.Subscriber) {
	logger := log.WithComponent("cli")
	for evt := range sub {
		switch evt.Type {
		case events.EventFileProcessed:
			logger.Debug().Str("files", evt.Metadata["files"]).Msg(evt.Message)
		case events.EventSnapshotFailed, events.EventRestoreFailed, events.EventPruneFailed:
			logger.Error().Msg(evt.Message)
		default:
			logger.Debug().Msg(evt.Message)
		}
	}
}

// maybeServeMetrics starts the optional --metrics-addr HTTP server. It is
// off by default: a CLI batch tool has no reason to bind a port unless
// asked, unlike the teacher's always-on cluster daemon.
func maybeServeMetrics(cmd *cobra.Command, st *store.Store) {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return
	}

	metrics.SetVersion(Version)
	collector := metrics.NewCollector(st)
	if err := collector.Collect(); err != nil {
		metrics.RegisterComponent("store", false, err.Error())
		log.WithComponent("cli").Warn().Err(err).Msg("initial metrics collection failed")
	} else {
		metrics.RegisterComponent("store", true, "")
	}

	go func() {
		http.Handle("/metrics", metrics.Handler())
		http.Handle("/health", metrics.HealthHandler())
		http.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(addr, nil); err != nil {
			fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
		}
	}()
	fmt.Printf("metrics endpoint: http://%s/metrics\n", addr)
}
