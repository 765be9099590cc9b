package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qlens/internal/config"
	"qlens/internal/logger"
	"qlens/internal/qdrant"
	"qlens/internal/release"
	"qlens/internal/report"
)

// Version info is injected by main via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "qlens",
	Short: "Read-only Qdrant collection and document reporting",
	Long:  "A CLI tool for inspecting Qdrant deployments: collection summaries, per-collection document sets, and per-user document listings",
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Full report with unique document counts and per-collection listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, report.Options{
			Scan: report.ScanOptions{
				BatchSize:     100,
				IncludeSource: true,
				FlatFields:    true,
			},
			CountDocs: true,
			ListDocs:  true,
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Collection table with unique document counts, no listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, report.Options{
			Scan:      report.ScanOptions{BatchSize: 100},
			CountDocs: true,
		})
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Point counts only, using large scroll batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, report.Options{
			Scan: report.ScanOptions{BatchSize: 1000},
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Documents grouped by user for <user>:<collection> collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, rep, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		defer func() { _ = log.Sync() }()

		return rep.Users(cmd.Context(), report.Options{
			EnvName: cfg.EnvName,
			Scan: report.ScanOptions{
				BatchSize:     100,
				IncludeSource: true,
				FlatFields:    true,
			},
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Scroll-count a single collection to verify pagination coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, _ := cmd.Flags().GetString("collection")
		batch, _ := cmd.Flags().GetUint32("batch")

		_, log, rep, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		defer func() { _ = log.Sync() }()

		return rep.Verify(cmd.Context(), collection, batch)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "qlens %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildTime)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}

		rel, newer, err := release.Check(cmd.Context(), Version, release.LatestURL)
		if err != nil {
			return fmt.Errorf("check latest release: %w", err)
		}
		if newer {
			fmt.Fprintf(out, "A newer release is available: %s\n", rel.TagName)
		} else {
			fmt.Fprintln(out, "Already up to date")
		}
		return nil
	},
}

// setup loads configuration, builds the logger, and connects to
// Qdrant (with the single scheme-toggle fallback). The returned close
// function releases the gRPC connection.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, *report.Reporter, func(), error) {
	// Merge ~/.qlens/config.yaml so QDRANT_*/ENV_NAME from that file
	// are visible as env vars before the Config is built.
	if err := config.LoadUserConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, nil, nil, err
	}

	log, err := logger.New(cfg.EnvName, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, nil, err
	}

	qc, err := qdrant.Connect(cmd.Context(), cfg, log)
	if err != nil {
		_ = log.Sync()
		return config.Config{}, nil, nil, nil, err
	}

	rep := &report.Reporter{
		Store: qc,
		Out:   cmd.OutOrStdout(),
		Log:   log,
	}
	return cfg, log, rep, func() { _ = qc.Close() }, nil
}

func runReport(cmd *cobra.Command, opts report.Options) error {
	cfg, log, rep, closeFn, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	defer func() { _ = log.Sync() }()

	opts.EnvName = cfg.EnvName
	return rep.Run(cmd.Context(), opts)
}

func init() {
	verifyCmd.Flags().String("collection", "", "Collection to verify")
	verifyCmd.Flags().Uint32("batch", 100, "Scroll batch size")
	_ = verifyCmd.MarkFlagRequired("collection")
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
