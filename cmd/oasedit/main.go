package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/studiowebux/oasedit/internal/cli"
	"github.com/studiowebux/oasedit/internal/config"
	"github.com/studiowebux/oasedit/internal/converter"
	"github.com/studiowebux/oasedit/internal/history"
	"github.com/studiowebux/oasedit/internal/keybinds"
	"github.com/studiowebux/oasedit/internal/logging"
	"github.com/studiowebux/oasedit/internal/probe"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/storage"
	"github.com/studiowebux/oasedit/internal/store"
	"github.com/studiowebux/oasedit/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// The formatted response was already printed
		if !errors.Is(err, cli.ErrRequestFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app holds the services shared by every command
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *storage.DB
	store   *store.Store
	theme   *store.ThemeStore
	history *history.Manager
}

var current *app

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "oasedit [document]",
	Short: "oasedit - OpenAPI document editor and request runner",
	Long: `oasedit edits OpenAPI 3 documents and sends their operations to the declared servers.

One document is kept at a time in a local database. Import it once, then edit its sections,
send requests, probe servers and export the result.

Run without arguments to start the TUI. A file, URL or "-" (stdin) is imported first.

Examples:
  oasedit                                  # Start the TUI on the stored document
  oasedit petstore.yaml                    # Import, then start the TUI
  oasedit import https://example.com/openapi.json
  oasedit paths list -q pets
  oasedit run GET /pets/{petId} -p petId=7
  oasedit probe
  oasedit export yaml -o api.yaml`,
	Version:           version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			if err := importArg(cmd, args[0], ""); err != nil {
				return err
			}
		}
		return runTUI(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.DefaultFile()+")")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(componentsCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(securityCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(tuiCmd)
}

// setup loads configuration and opens the local database
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{File: flagConfig, Flags: cmd.Root().PersistentFlags()})
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	if err := config.Initialize(cfg); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	db, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}

	s := store.New(db, log)
	if err := s.Restore(); err != nil {
		log.Warn().Err(err).Msg("stored document could not be restored")
	}

	fallback, err := store.ParseTheme(cfg.Theme)
	if err != nil {
		fallback = store.ThemeLight
	}

	current = &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		store: s,
		theme: store.NewThemeStore(db, fallback, log),
	}
	if cfg.HistoryEnabled {
		current.history = history.NewManager(db.SQL())
	}
	log.Debug().Str("db", cfg.DatabasePath()).Msg("storage opened")
	return nil
}

func teardown() error {
	if current == nil || current.db == nil {
		return nil
	}
	err := current.db.Close()
	current = nil
	return err
}

// newRunner builds a request runner over the stored document
func (a *app) newRunner() (*runner.Runner, error) {
	missing, err := runner.ParseMissingPolicy(a.cfg.MissingParams)
	if err != nil {
		return nil, err
	}
	opts := runner.Options{
		Timeout: a.cfg.RequestTimeout,
		Missing: missing,
		Logger:  a.log,
	}
	if a.cfg.TLSCAFile != "" || a.cfg.TLSCertFile != "" || a.cfg.TLSInsecure {
		opts.TLS = &runner.TLSConfig{
			CertFile:           a.cfg.TLSCertFile,
			KeyFile:            a.cfg.TLSKeyFile,
			CAFile:             a.cfg.TLSCAFile,
			InsecureSkipVerify: a.cfg.TLSInsecure,
		}
	}
	if a.history != nil {
		opts.History = a.history
	}
	return runner.New(a.store, opts)
}

func (a *app) newProber() *probe.Prober {
	return probe.New(probe.Options{Timeout: a.cfg.ProbeTimeout, Logger: a.log})
}

func (a *app) newImporter() *converter.Importer {
	return converter.NewImporter(a.store, nil, a.log)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// runTUI starts the interactive TUI
func runTUI(cmd *cobra.Command) error {
	r, err := current.newRunner()
	if err != nil {
		return err
	}
	keys, err := keybinds.LoadOrDefault(filepath.Join(current.cfg.DataDir, keybinds.ConfigFile))
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), tui.Options{
		Store:   current.store,
		Theme:   current.theme,
		Runner:  r,
		Prober:  current.newProber(),
		History: current.history,
		Keys:    keys,
		Logger:  current.log,
	})
}
