package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/schedule"
	"github.com/javiermolinar/timetable/internal/summary"
)

func (a *App) teacherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Manage teachers",
	}
	cmd.AddCommand(a.teacherAddCmd(), a.teacherEditCmd(), a.teacherRemoveCmd(), a.teacherListCmd())
	return cmd
}

func (a *App) teacherAddCmd() *cobra.Command {
	var given, family string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a teacher",
		Example: `  timetable teacher add --given Ana --family Ruiz`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			t, err := schedule.NewTeacher(given, family)
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := a.repo.CreateTeacher(ctx, t); err != nil {
				return fmt.Errorf("creating teacher: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatSuccess("Added teacher"), short(t.ID), t.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&given, "given", "", "Given name (required)")
	cmd.Flags().StringVar(&family, "family", "", "Family name (required)")
	return cmd
}

func (a *App) teacherEditCmd() *cobra.Command {
	var given, family string

	cmd := &cobra.Command{
		Use:     "edit [teacher-id]",
		Short:   "Rename a teacher",
		Example: `  timetable teacher edit 3f2a --family "Ruiz Soto"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := resolveID("teacher", teacherIDs(a.catalog), args[0])
			if err != nil {
				return err
			}
			t, _ := a.catalog.Teacher(id)
			if cmd.Flags().Changed("given") {
				t.GivenName = strings.TrimSpace(given)
			}
			if cmd.Flags().Changed("family") {
				t.FamilyName = strings.TrimSpace(family)
			}
			if err := t.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			if err := a.repo.UpdateTeacher(ctx, t); err != nil {
				return fmt.Errorf("updating teacher: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatSuccess("Updated teacher"), short(t.ID), t.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&given, "given", "", "New given name")
	cmd.Flags().StringVar(&family, "family", "", "New family name")
	return cmd
}

func (a *App) teacherRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove [teacher-id]",
		Short: "Remove a teacher",
		Long: `Remove a teacher. Their classes stay scheduled and are listed under
"Teacher not found" until they are reassigned or deleted.`,
		Example: `  timetable teacher remove 3f2a`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := resolveID("teacher", teacherIDs(a.catalog), args[0])
			if err != nil {
				return err
			}
			t, _ := a.catalog.Teacher(id)
			classes := len(a.store.ListByTeacher(id))

			question := fmt.Sprintf("Remove teacher %s (%s)?", t.FullName(), classCount(classes))
			return a.removeRecord(cmd, yes, question, "teacher", id, a.repo.DeleteTeacher)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) teacherListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teachers and how many classes each has",
		Example: `  timetable teacher list
  timetable teacher list --search ruiz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			weeks := summary.Teachers(a.catalog, a.store.Entries(), search)
			if len(weeks) == 0 {
				fmt.Fprintln(out, "No teachers found.")
				return nil
			}

			for _, w := range weeks {
				fmt.Fprintf(out, "  %s  %-30s %s\n",
					formatMuted(short(w.Teacher.ID)),
					w.Teacher.FamilyName+", "+w.Teacher.GivenName,
					classCount(w.Classes),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only teachers whose given or family name contains this text")
	return cmd
}

func classCount(n int) string {
	if n == 1 {
		return "1 class scheduled"
	}
	return fmt.Sprintf("%d classes scheduled", n)
}

func (a *App) subjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}
	cmd.AddCommand(a.subjectAddCmd(), a.subjectEditCmd(), a.subjectRemoveCmd(), a.subjectListCmd())
	return cmd
}

func (a *App) subjectAddCmd() *cobra.Command {
	var name, code string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a subject",
		Example: `  timetable subject add --name Mathematics --code MAT101`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			s, err := schedule.NewSubject(name, code)
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := a.repo.CreateSubject(ctx, s); err != nil {
				return fmt.Errorf("creating subject: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatSuccess("Added subject"), short(s.ID), s.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Subject name (required)")
	cmd.Flags().StringVar(&code, "code", "", "Subject code (required)")
	return cmd
}

func (a *App) subjectEditCmd() *cobra.Command {
	var name, code string

	cmd := &cobra.Command{
		Use:     "edit [subject-id]",
		Short:   "Change a subject",
		Example: `  timetable subject edit 9c1b --code MAT102`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := resolveID("subject", subjectIDs(a.catalog), args[0])
			if err != nil {
				return err
			}
			sub, _ := a.catalog.Subject(id)
			if cmd.Flags().Changed("name") {
				sub.Name = strings.TrimSpace(name)
			}
			if cmd.Flags().Changed("code") {
				sub.Code = strings.ToUpper(strings.TrimSpace(code))
			}
			if err := sub.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			if err := a.repo.UpdateSubject(ctx, sub); err != nil {
				return fmt.Errorf("updating subject: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatSuccess("Updated subject"), short(sub.ID), sub.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New subject name")
	cmd.Flags().StringVar(&code, "code", "", "New subject code")
	return cmd
}

func (a *App) subjectRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove [subject-id]",
		Short:   "Remove a subject",
		Example: `  timetable subject remove 9c1b`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := resolveID("subject", subjectIDs(a.catalog), args[0])
			if err != nil {
				return err
			}
			sub, _ := a.catalog.Subject(id)
			classes := a.countEntries(func(e schedule.Entry) bool { return e.SubjectID == id })

			question := fmt.Sprintf("Remove subject %s (%s)?", sub.Label(), classCount(classes))
			return a.removeRecord(cmd, yes, question, "subject", id, a.repo.DeleteSubject)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) subjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			subjects := a.catalog.Subjects()
			if len(subjects) == 0 {
				fmt.Fprintln(out, "No subjects found.")
				return nil
			}
			for _, s := range subjects {
				fmt.Fprintf(out, "  %s  %s\n", formatMuted(short(s.ID)), s.Label())
			}
			return nil
		},
	}
}

func (a *App) roomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
	}
	cmd.AddCommand(a.roomAddCmd(), a.roomEditCmd(), a.roomRemoveCmd(), a.roomListCmd())
	return cmd
}

func (a *App) roomAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a room",
		Example: `  timetable room add --name "Lab 1"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			r, err := schedule.NewRoom(name)
			if err != nil {
				return err
			}
			ctx := context.Background()
			if err := a.repo.CreateRoom(ctx, r); err != nil {
				return fmt.Errorf("creating room: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatSuccess("Added room"), short(r.ID), r.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Room name (required)")
	return cmd
}

func (a *App) roomEditCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "edit [room-id]",
		Short:   "Rename a room",
		Example: `  timetable room edit 77de --name "Lab 2"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := resolveID("room", roomIDs(a.catalog), args[0])
			if err != nil {
				return err
			}
			r, _ := a.catalog.Room(id)
			if cmd.Flags().Changed("name") {
				r.Name = strings.TrimSpace(name)
			}
			if err := r.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			if err := a.repo.UpdateRoom(ctx, r); err != nil {
				return fmt.Errorf("updating room: %w", err)
			}
			if err := a.reloadCatalog(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", formatSuccess("Updated room"), short(r.ID), r.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New room name")
	return cmd
}

func (a *App) roomRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove [room-id]",
		Short:   "Remove a room",
		Example: `  timetable room remove 77de`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := resolveID("room", roomIDs(a.catalog), args[0])
			if err != nil {
				return err
			}
			r, _ := a.catalog.Room(id)
			classes := a.countEntries(func(e schedule.Entry) bool { return e.RoomID == id })

			question := fmt.Sprintf("Remove room %s (%s)?", r.Name, classCount(classes))
			return a.removeRecord(cmd, yes, question, "room", id, a.repo.DeleteRoom)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) roomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rooms := a.catalog.Rooms()
			if len(rooms) == 0 {
				fmt.Fprintln(out, "No rooms found.")
				return nil
			}
			for _, r := range rooms {
				fmt.Fprintf(out, "  %s  %s\n", formatMuted(short(r.ID)), r.Name)
			}
			return nil
		},
	}
}

// removeRecord deletes a catalog record after confirmation. Entries that
// reference it are left alone and fall back to the not-found placeholders.
func (a *App) removeRecord(cmd *cobra.Command, yes bool, question, kind, id string, remove func(context.Context, string) error) error {
	out := cmd.OutOrStdout()
	if !yes && !promptYesNo(cmd.InOrStdin(), out, question) {
		fmt.Fprintln(out, "Nothing removed.")
		return nil
	}

	ctx := context.Background()
	if err := remove(ctx, id); err != nil {
		return fmt.Errorf("removing %s: %w", kind, err)
	}
	if err := a.reloadCatalog(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s\n", formatSuccess("Removed "+kind), short(id))
	return nil
}

func (a *App) countEntries(match func(schedule.Entry) bool) int {
	n := 0
	for _, e := range a.store.Entries() {
		if match(e) {
			n++
		}
	}
	return n
}

func teacherIDs(c *schedule.Catalog) []string {
	var ids []string
	for _, t := range c.Teachers() {
		ids = append(ids, t.ID)
	}
	return ids
}

func subjectIDs(c *schedule.Catalog) []string {
	var ids []string
	for _, s := range c.Subjects() {
		ids = append(ids, s.ID)
	}
	return ids
}

func roomIDs(c *schedule.Catalog) []string {
	var ids []string
	for _, r := range c.Rooms() {
		ids = append(ids, r.ID)
	}
	return ids
}
