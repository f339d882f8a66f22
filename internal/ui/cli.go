// Package ui implements the timetable command line.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/config"
	"github.com/javiermolinar/timetable/internal/db"
	"github.com/javiermolinar/timetable/internal/debuglog"
	"github.com/javiermolinar/timetable/internal/schedule"
	"github.com/javiermolinar/timetable/internal/scheduler"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config     *config.Config
	configPath string
	sched      *scheduler.Scheduler
	repo       *db.SQLite
	store      *schedule.Store
	catalog    *schedule.Catalog
	log        *debuglog.Logger
	root       *cobra.Command
	debug      bool // Enable debug logging
}

// NewApp creates a new CLI application. If cfg is nil the configuration is
// loaded from --config or the default path when a command runs.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.root = &cobra.Command{
		Use:   "timetable",
		Short: "Weekly class schedules without double-booking",
		Long: `Timetable keeps a weekly class schedule for a school.

Each class binds a teacher, a subject and a room to a weekday and a time
range. A class is rejected if its teacher or its room is already busy at
any moment of that range.`,
		SilenceUsage:      true,
		SilenceErrors:     true, // main prints the error
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return a.loadConfig() },
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to "+debuglog.DefaultPath)
	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultConfigPath()+")")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.teacherCmd())
	a.root.AddCommand(a.subjectCmd())
	a.root.AddCommand(a.roomCmd())
	a.root.AddCommand(a.classCmd())
	a.root.AddCommand(a.gridCmd())
	a.root.AddCommand(a.freeCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCatalogCmd())
	a.root.AddCommand(a.backupCmd())
	a.root.AddCommand(a.restoreCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timetable %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides the command line arguments.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput redirects command output and errors to w.
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// SetInput sets where confirmation prompts read from.
func (a *App) SetInput(r io.Reader) {
	a.root.SetIn(r)
}

// Close releases the database and the debug log.
func (a *App) Close() error {
	var errs []error
	if a.repo != nil {
		errs = append(errs, a.repo.Close())
		a.repo = nil
	}
	if a.log != nil {
		errs = append(errs, a.log.Close())
		a.log = nil
	}
	return errors.Join(errs...)
}

func (a *App) loadConfig() error {
	if a.configPath == "" && a.config != nil {
		return a.loadScheduler()
	}

	path := a.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.config = cfg
	return a.loadScheduler()
}

func (a *App) loadScheduler() error {
	s, err := a.config.Scheduler()
	if err != nil {
		return fmt.Errorf("invalid schedule config: %w", err)
	}
	a.sched = s
	if a.config.UI.NoColor {
		DisableColor()
	}
	return nil
}

// ensureStore opens the database and loads the schedule the first time a
// command needs it.
func (a *App) ensureStore() error {
	if a.store != nil {
		return nil
	}

	if a.debug && a.log == nil {
		l, err := debuglog.Open(debuglog.DefaultPath)
		if err != nil {
			return err
		}
		a.log = l
	}

	if a.repo == nil {
		path := a.config.Storage.DBPath
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
		repo, err := db.New(path)
		if err != nil {
			a.log.Error("open database", err)
			return err
		}
		a.repo = repo
	}

	ctx := context.Background()
	entries, err := a.repo.ListEntries(ctx)
	if err != nil {
		a.log.Error("list entries", err)
		return fmt.Errorf("loading schedule: %w", err)
	}

	store := schedule.NewStore(schedule.WithBackend(a.repo), schedule.WithLogger(a.log))
	if err := store.Load(entries); err != nil {
		a.log.Error("load schedule", err)
		return fmt.Errorf("loading schedule: %w", err)
	}
	a.store = store

	return a.reloadCatalog(ctx)
}

func (a *App) reloadCatalog(ctx context.Context) error {
	catalog, err := a.repo.LoadCatalog(ctx)
	if err != nil {
		a.log.Error("load catalog", err)
		return fmt.Errorf("loading catalog: %w", err)
	}
	a.catalog = catalog
	return nil
}
