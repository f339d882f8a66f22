package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/backup"
	"github.com/javiermolinar/timetable/internal/db"
	"github.com/javiermolinar/timetable/internal/export"
)

func (a *App) exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timetable to an Excel workbook",
		Long: `Write an .xlsx workbook with a Classes sheet listing every class and one
timetable sheet per teacher who has classes.`,
		Example: `  timetable export --out timetable.xlsx`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			path, err := resolvePath(out)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating workbook: %w", err)
			}

			err = export.WriteTimetable(f, a.catalog, a.store.Entries(), a.sched.Days(), a.sched.Marks())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d classes to %s\n", a.store.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "timetable.xlsx", "Output file")
	return cmd
}

func (a *App) importCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-catalog [workbook]",
		Short: "Import teachers, subjects and rooms from an Excel workbook",
		Long: `Import catalog records from an .xlsx workbook.

Sheets read (the first row of each is a header):
  Teachers  given name, family name
  Subjects  name, code
  Rooms     name

Rows with a missing value are skipped and counted.`,
		Example: `  timetable import-catalog staff.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			f, err := openExisting(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			ctx := context.Background()
			result, err := export.ImportCatalog(ctx, f, a.repo)
			if err != nil {
				return fmt.Errorf("importing catalog: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d teachers, %d subjects, %d rooms from %s\n",
				result.Teachers, result.Subjects, result.Rooms, path)
			if result.Skipped > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatMuted(fmt.Sprintf("Skipped %d incomplete rows", result.Skipped)))
			}
			return nil
		},
	}
}

func (a *App) backupCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "backup",
		Short:   "Write the catalogs and all classes to a TOML file",
		Example: `  timetable backup --out timetable.toml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			path, err := resolvePath(out)
			if err != nil {
				return err
			}

			snap := db.Snapshot{
				Teachers: a.catalog.Teachers(),
				Subjects: a.catalog.Subjects(),
				Rooms:    a.catalog.Rooms(),
				Entries:  a.store.Entries(),
			}
			if err := backup.WriteFile(path, snap); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d teachers, %d subjects, %d rooms and %d classes to %s\n",
				len(snap.Teachers), len(snap.Subjects), len(snap.Rooms), len(snap.Entries), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "timetable.toml", "Output file")
	return cmd
}

func (a *App) restoreCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Replace everything with the contents of a TOML backup",
		Long: `Replace all teachers, subjects, rooms and classes with the contents of a
backup written by 'timetable backup'. The backup is checked first: if any
class in it is invalid or clashes with another, nothing is changed.`,
		Example: `  timetable restore timetable.toml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if _, err := statFile(path); err != nil {
				return err
			}
			snap, err := backup.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading backup: %w", err)
			}

			if !yes {
				question := fmt.Sprintf("Replace %d classes with %d from %s?", a.store.Len(), len(snap.Entries), path)
				if !promptYesNo(cmd.InOrStdin(), out, question) {
					fmt.Fprintln(out, "Nothing restored.")
					return nil
				}
			}

			ctx := context.Background()
			if err := a.repo.ReplaceAll(ctx, snap); err != nil {
				return fmt.Errorf("restoring backup: %w", err)
			}
			if err := a.store.Load(snap.Entries); err != nil {
				return fmt.Errorf("loading restored schedule: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(out, "Restored %d teachers, %d subjects, %d rooms and %d classes from %s\n",
				len(snap.Teachers), len(snap.Subjects), len(snap.Rooms), len(snap.Entries), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func openExisting(path string) (*os.File, error) {
	if _, err := statFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("checking file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory: %s", path)
	}
	return info, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
