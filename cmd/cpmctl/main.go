// Command cpmctl is the critical-path scheduling engine's CLI: an
// interactive shell, a one-shot compute pass, and an HTTP server, all
// sharing the same Schedule construction path.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cpmforge/scheduler/internal/cli"
	"github.com/cpmforge/scheduler/internal/config"
	"github.com/cpmforge/scheduler/internal/httpapi"
	"github.com/cpmforge/scheduler/internal/obs"
	"github.com/cpmforge/scheduler/internal/persistence"
	"github.com/cpmforge/scheduler/internal/schedule"
)

// Build-info vars, overridden via -ldflags at release time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
)

var (
	configPath  string
	loadPath    string
	loadFormat  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cpmctl",
		Short: "Critical-path scheduling engine",
		Long: `cpmctl builds and maintains a critical-path (CPM) project schedule:
a working-day calendar, a task DAG, forward/backward pass computation,
and JSON/CSV/SQLite persistence, driven either through an interactive
shell or a small HTTP API.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&loadPath, "load", "", "snapshot path to load at startup")
	rootCmd.PersistentFlags().StringVar(&loadFormat, "load-format", "json", "snapshot format to load (json|csv)")

	rootCmd.AddCommand(newReplCmd(), newServeCmd(), newComputeCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	if configPath == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(configPath)
}

func buildSchedule() (*schedule.Schedule, error) {
	if loadPath == "" {
		return schedule.NewWithMetadata(schedule.DefaultMetadata()), nil
	}
	switch loadFormat {
	case "json":
		return persistence.LoadScheduleFromJSON(loadPath)
	case "csv":
		return persistence.LoadScheduleFromCSV(loadPath)
	default:
		return nil, fmt.Errorf("unknown load format %q (want json|csv)", loadFormat)
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive schedule shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sched, err := buildSchedule()
			if err != nil {
				return err
			}
			logger := obs.NewTextLogger("cli", cfg.Engine.LogLevel)
			sched.SetLogger(logger)
			repl := cli.New(sched, os.Stdin, os.Stdout, logger)
			return repl.Run()
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			sched, err := buildSchedule()
			if err != nil {
				return err
			}
			logger := obs.NewLogger("httpapi", cfg.Engine.LogLevel)
			sched.SetLogger(logger)

			handlers := httpapi.NewHandlers(sched, logger)
			server := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      handlers.Router(),
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutS) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeoutS) * time.Second,
			}
			successColor.Fprintf(os.Stdout, "listening on %s\n", cfg.Server.Addr)
			return server.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override the configured listen address")
	return cmd
}

func newComputeCmd() *cobra.Command {
	var savePath, saveFormat string
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Load a snapshot, refresh it, and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := buildSchedule()
			if err != nil {
				return err
			}
			summary, err := sched.Refresh()
			if err != nil {
				return err
			}
			fmt.Printf("tasks=%d critical=%d critical_path=%v\n",
				summary.TaskCount, summary.CriticalCount, summary.CriticalPath)
			if savePath == "" {
				return nil
			}
			switch saveFormat {
			case "json":
				return persistence.SaveScheduleToJSON(sched, savePath)
			case "csv":
				return persistence.SaveScheduleToCSV(sched, savePath)
			default:
				return fmt.Errorf("unknown save format %q (want json|csv)", saveFormat)
			}
		},
	}
	cmd.Flags().StringVar(&savePath, "save", "", "write the refreshed snapshot to this path")
	cmd.Flags().StringVar(&saveFormat, "save-format", "json", "snapshot format to write (json|csv)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cpmctl %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		},
	}
}
