// Package cli implements the sprintplan command-line interface.
//
// Each invocation resolves its directories, loads config.yaml, opens the
// configured store, and runs one Service operation. Results go to stdout,
// as text or as JSON with --json; logs and errors go to stderr.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/sprintplan/internal/backlog"
	"github.com/mesh-intelligence/sprintplan/internal/logging"
	"github.com/mesh-intelligence/sprintplan/internal/paths"
	"github.com/mesh-intelligence/sprintplan/internal/store"
	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// noSetup lists commands that run without config or store.
var noSetup = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// app carries flag values and the per-invocation resources.
type app struct {
	flagConfigDir   string
	flagDataDir     string
	flagJSON        bool
	flagMetricsFile string

	configDir  string
	dataDir    string
	exportsDir string
	cfg        types.Config

	store    store.Store
	svc      *backlog.Service
	log      *zap.Logger
	registry *prometheus.Registry
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sprintplan",
		Short: "Plan a prioritized backlog into sprints and track team velocity",
		Long: `sprintplan orders a backlog of work items by priority and dependents,
packs them greedily into capacity-bounded sprints, and recalibrates the
team capacity from a rolling average of completed points.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flagConfigDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&a.flagDataDir, "data-dir", "", "data directory (env "+paths.EnvDataDir+")")
	root.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "output as JSON")
	root.PersistentFlags().StringVar(&a.flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")

	root.AddCommand(
		newInitCmd(a),
		newIngestCmd(a),
		newPlanCmd(a),
		newVelocityCmd(a),
		newShowCmd(a),
		newDepsCmd(a),
		newExportCmd(a),
		newClearCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves directories, loads the config, and opens the store.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if noSetup[cmd.Name()] {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flagConfigDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return userErr(err)
	}

	dataDir, err := paths.ResolveDataDir(a.flagDataDir, cfg.DataDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve data dir: %w", err))
	}
	exportsDir, err := paths.ResolveExportsDir(cfg.ExportsDir, dataDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve exports dir: %w", err))
	}
	cfg.DataDir = dataDir
	cfg.ExportsDir = exportsDir

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
	if err != nil {
		return userErr(err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return sysErr(fmt.Errorf("open store: %w", err))
	}

	a.configDir, a.dataDir, a.exportsDir, a.cfg = configDir, dataDir, exportsDir, cfg
	a.log = log.With(zap.String("backend", cfg.Backend))
	a.store = st
	a.registry = prometheus.NewRegistry()
	a.svc = backlog.NewService(st,
		backlog.WithLogger(a.log),
		backlog.WithMetrics(backlog.NewMetrics(a.registry)),
	)
	return nil
}

// close releases the store, writes the metrics file, and flushes the log.
// It runs whether or not the command succeeded.
func (a *app) close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.flagMetricsFile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.flagMetricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.log != nil {
		if err := logging.Sync(a.log); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = sysErr(cerr)
	}
	if err == nil {
		return exitSuccess
	}
	errorColor.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

// Execute runs the CLI against the process arguments.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}
