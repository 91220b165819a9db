package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-indust/fourfold/internal/config"
	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/logger"
	"github.com/dusk-indust/fourfold/internal/orchestrator"
	"github.com/dusk-indust/fourfold/internal/patternstore"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
	"github.com/dusk-indust/fourfold/internal/telemetry"
)

// version is set by goreleaser at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fourfold",
	Short: "Analyze a problem from four perspectives at once",
	Long: `fourfold runs four analytical streams against the same problem in parallel:
- methodical: step-by-step decomposition into a plan.
- divergent: alternative framings and unconventional options.
- skeptical: assumptions, risks and failure modes.
- integrative: a whole-system view that builds on the others' insights.

Each stream is bounded by a per-task timeout and the whole batch by a total
timeout. The results are merged into one conclusion; disagreements between
streams are classified, graded by severity and remembered as patterns.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FOURFOLD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "project directory holding fourfold.yml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (overrides config)")
	rootCmd.PersistentFlags().String("patterns-backend", "", "pattern store: memory or kuzu (overrides config)")
	rootCmd.PersistentFlags().String("otel-endpoint", "", "OTLP/HTTP endpoint for traces (overrides config)")
	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("patterns-backend", rootCmd.PersistentFlags().Lookup("patterns-backend"))
	_ = viper.BindPFlag("otel-endpoint", rootCmd.PersistentFlags().Lookup("otel-endpoint"))
}

func registerCommands() {
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(patternsCmd())
	rootCmd.AddCommand(diagramCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveMCPCmd())
	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// loadConfig reads fourfold.yml from the project directory and applies flag
// and FOURFOLD_* environment overrides.
func loadConfig() (*config.Config, string, error) {
	root, err := filepath.Abs(viper.GetString("dir"))
	if err != nil {
		return nil, "", fmt.Errorf("resolving project dir: %w", err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, root, nil
}

func applyOverrides(cfg *config.Config) {
	if v := viper.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v := viper.GetString("patterns-backend"); v != "" {
		cfg.Patterns.Backend = v
	}
	if v := viper.GetString("otel-endpoint"); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	if v := viper.GetDuration("per-task"); v > 0 {
		cfg.Timeouts.PerTask = v
	}
	if v := viper.GetDuration("total"); v > 0 {
		cfg.Timeouts.Total = v
	}
	if v := viper.GetDuration("stream-delay"); v > 0 {
		cfg.StreamDelay = v
	}
}

// app is everything a command needs to run an analysis.
type app struct {
	cfg      *config.Config
	root     string
	log      *slog.Logger
	orch     *orchestrator.Orchestrator
	registry *stream.Registry
	store    patternstore.Store
}

// withRuntime wires logging, tracing and the pattern store around fn. Learned
// patterns are restored before fn runs and persisted after it returns.
// Logs go to logOut so stdout stays clean for reports.
func withRuntime(ctx context.Context, logOut io.Writer, fn func(context.Context, *app) error, opts ...orchestrator.Option) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.Log, logOut)

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	store, err := patternstore.Open(ctx, cfg.Patterns, root)
	if err != nil {
		return fmt.Errorf("open pattern store: %w", err)
	}
	defer store.Close()

	ce := conflict.NewEngine(conflict.WithThresholds(cfg.Thresholds()))
	if n, err := patternstore.Restore(ctx, store, ce); err != nil {
		log.Warn("could not restore conflict patterns", "error", err)
	} else {
		log.Debug("conflict patterns restored", "count", n)
	}

	synth := synthesis.NewEngine(ce, synthesis.WithImportanceCutoff(cfg.Synthesis.ImportanceCutoff))
	orchOpts := []orchestrator.Option{
		orchestrator.WithTimeouts(cfg.Timeouts.PerTask, cfg.Timeouts.Total),
		orchestrator.WithShareDelay(cfg.Timeouts.ShareDelay),
		orchestrator.WithLogger(log),
	}
	rt := &app{
		cfg:      cfg,
		root:     root,
		log:      log,
		orch:     orchestrator.New(synth, append(orchOpts, opts...)...),
		registry: stream.NewRegistry(cfg.StreamDelay),
		store:    store,
	}

	runErr := fn(ctx, rt)

	if n, err := patternstore.Persist(context.WithoutCancel(ctx), store, ce); err != nil {
		log.Warn("could not persist conflict patterns", "error", err)
	} else {
		log.Debug("conflict patterns persisted", "count", n)
	}
	return runErr
}
