package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/schedule"
	"github.com/javiermolinar/timetable/internal/summary"
)

// classFlags are the fields of a class as given on the command line.
type classFlags struct {
	teacher string
	subject string
	room    string
	day     string
	start   string
	end     string
}

func (f *classFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.teacher, "teacher", "", "Teacher id or unique id prefix")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Subject id or unique id prefix")
	cmd.Flags().StringVar(&f.room, "room", "", "Room id or unique id prefix")
	cmd.Flags().StringVar(&f.day, "day", "", "Weekday, e.g. monday or mon")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM)")
}

// apply copies the flags set on cmd into d. With onlyChanged, flags the user
// did not pass leave d untouched.
func (a *App) apply(cmd *cobra.Command, f *classFlags, d *schedule.Draft, onlyChanged bool) error {
	set := func(name string) bool {
		return !onlyChanged || cmd.Flags().Changed(name)
	}

	var err error
	if set("teacher") {
		if d.TeacherID, err = resolveID("teacher", teacherIDs(a.catalog), f.teacher); err != nil {
			return err
		}
	}
	if set("subject") {
		if d.SubjectID, err = resolveID("subject", subjectIDs(a.catalog), f.subject); err != nil {
			return err
		}
	}
	if set("room") {
		if d.RoomID, err = resolveID("room", roomIDs(a.catalog), f.room); err != nil {
			return err
		}
	}
	if set("day") {
		d.Day = 0
		if strings.TrimSpace(f.day) != "" {
			if d.Day, err = schedule.ParseWeekday(f.day); err != nil {
				return err
			}
		}
	}
	if set("start") {
		d.Start = strings.TrimSpace(f.start)
	}
	if set("end") {
		d.End = strings.TrimSpace(f.end)
	}
	return nil
}

// checkSlot runs the draft's own validation, then the working-week rules.
func (a *App) checkSlot(d schedule.Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return a.sched.ValidateTimeSlot(d.Day, d.Start, d.End)
}

// reportConflict prints the clashing classes when err is a conflict.
func (a *App) reportConflict(cmd *cobra.Command, err error) {
	var cerr *schedule.ConflictError
	if errors.As(err, &cerr) {
		printConflicts(cmd.ErrOrStderr(), a.catalog, cerr)
	}
}

func (a *App) classCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Add, edit, delete and list classes",
	}
	cmd.AddCommand(a.classAddCmd(), a.classEditCmd(), a.classDeleteCmd(), a.classListCmd())
	return cmd
}

func (a *App) classAddCmd() *cobra.Command {
	var f classFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a weekly class",
		Long: `Schedule a weekly class.

The class is rejected if its teacher or its room already has a class on the
same day whose time range overlaps. Ranges that only touch, such as
07:00-09:00 and 09:00-10:00, do not overlap.`,
		Example: `  timetable class add --teacher 3f2a --subject 9c1b --room 77de --day mon --start 07:00 --end 09:00`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			var d schedule.Draft
			if err := a.apply(cmd, &f, &d, false); err != nil {
				return err
			}
			if err := a.checkSlot(d); err != nil {
				return err
			}

			e, err := a.store.Create(context.Background(), d)
			if err != nil {
				a.reportConflict(cmd, err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s  %s\n",
				formatSuccess("Added class"),
				short(e.ID),
				formatEntry(a.catalog, e),
				a.catalog.TeacherName(e.TeacherID),
			)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func (a *App) classEditCmd() *cobra.Command {
	var f classFlags

	cmd := &cobra.Command{
		Use:   "edit [class-id]",
		Short: "Change a class",
		Long: `Change a class. Only the given flags change; the rest of the class is kept.
The edited class is checked against every other class, never against itself.`,
		Example: `  timetable class edit 5d0c --room 12ab
  timetable class edit 5d0c --day tue --start 10:00 --end 12:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			id, err := a.resolveEntry(args[0])
			if err != nil {
				return err
			}
			current, err := a.store.Get(id)
			if err != nil {
				return err
			}

			d := current.Draft()
			if err := a.apply(cmd, &f, &d, true); err != nil {
				return err
			}
			if err := a.checkSlot(d); err != nil {
				return err
			}

			e, err := a.store.Update(context.Background(), id, d)
			if err != nil {
				a.reportConflict(cmd, err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s  %s\n",
				formatSuccess("Updated class"),
				short(e.ID),
				formatEntry(a.catalog, e),
				a.catalog.TeacherName(e.TeacherID),
			)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func (a *App) classDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete [class-id]",
		Short:   "Delete a class",
		Example: `  timetable class delete 5d0c`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			id, err := a.resolveEntry(args[0])
			if err != nil {
				return err
			}
			e, err := a.store.Get(id)
			if err != nil {
				return err
			}

			if !yes {
				question := fmt.Sprintf("Delete %s %s for %s?", short(e.ID), formatEntry(a.catalog, e), a.catalog.TeacherName(e.TeacherID))
				if !promptYesNo(cmd.InOrStdin(), out, question) {
					fmt.Fprintln(out, "Nothing deleted.")
					return nil
				}
			}

			if err := a.store.Delete(context.Background(), id); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", formatSuccess("Deleted class"), short(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) classListCmd() *cobra.Command {
	var teacherRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List classes by teacher",
		Example: `  timetable class list
  timetable class list --teacher 3f2a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entries := a.store.Entries()

			var weeks []*summary.TeacherWeek
			if teacherRef != "" {
				id, err := resolveID("teacher", a.knownTeacherIDs(), teacherRef)
				if err != nil {
					return err
				}
				t, ok := a.catalog.Teacher(id)
				if !ok {
					t = schedule.Teacher{ID: id}
				}
				weeks = []*summary.TeacherWeek{summary.SummarizeTeacher(t, a.store.ListByTeacher(id))}
			} else {
				weeks = append(summary.Teachers(a.catalog, entries, ""), summary.Orphaned(a.catalog, entries)...)
			}

			printed := false
			for _, w := range weeks {
				if w.Classes == 0 && teacherRef == "" {
					continue
				}
				if printed {
					fmt.Fprintln(out)
				}
				printTeacherWeek(out, a.catalog, w)
				printed = true
			}
			if !printed {
				fmt.Fprintln(out, "No classes scheduled.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&teacherRef, "teacher", "", "Only this teacher (id or unique id prefix)")
	return cmd
}

// printTeacherWeek prints the teacher's classes in day and start order.
func printTeacherWeek(w io.Writer, c *schedule.Catalog, week *summary.TeacherWeek) {
	name := c.TeacherName(week.Teacher.ID)
	if _, ok := c.Teacher(week.Teacher.ID); !ok {
		name += " " + short(week.Teacher.ID)
	}
	fmt.Fprintf(w, "=== %s ===  %s\n", formatHeader(name), formatMuted(classCount(week.Classes)))
	for _, e := range week.Entries {
		fmt.Fprintf(w, "  %s %s\n", formatMuted(short(e.ID)), formatEntry(c, e))
	}
	if week.Classes == 0 {
		return
	}
	day, minutes := week.BusiestDay()
	fmt.Fprintf(w, "  %s\n", formatMuted(fmt.Sprintf("%s total, busiest %s (%s)",
		formatMinutes(week.TotalMinutes), day, formatMinutes(minutes))))
}

// knownTeacherIDs returns the catalog's teacher ids followed by ids that only
// appear on classes.
func (a *App) knownTeacherIDs() []string {
	ids := teacherIDs(a.catalog)
	for _, w := range summary.Orphaned(a.catalog, a.store.Entries()) {
		ids = append(ids, w.Teacher.ID)
	}
	return ids
}

func (a *App) resolveEntry(ref string) (string, error) {
	entries := a.store.Entries()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	id, err := resolveID("class", ids, ref)
	if errors.Is(err, ErrUnknownID) {
		return "", fmt.Errorf("%w: %s", schedule.ErrNotFound, ref)
	}
	return id, err
}

func promptYesNo(in io.Reader, out io.Writer, question string) bool {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
