package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/schedule"
)

func (a *App) freeCmd() *cobra.Command {
	var (
		teacherRef string
		roomRef    string
		day        string
		duration   int
	)

	cmd := &cobra.Command{
		Use:   "free",
		Short: "Find start times where a teacher and a room are both free",
		Long: `List every offered start time on a day where a class of the given length
fits before the end of the day without clashing with the teacher's or the
room's classes. Leave out --room to only look at the teacher, or --teacher
to only look at the room.`,
		Example: `  timetable free --teacher 3f2a --room 77de --day wed --duration 120`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			teacherID, err := resolveID("teacher", teacherIDs(a.catalog), teacherRef)
			if err != nil {
				return err
			}
			roomID, err := resolveID("room", roomIDs(a.catalog), roomRef)
			if err != nil {
				return err
			}
			if teacherID == "" && roomID == "" {
				return fmt.Errorf("%w: teacher or room", schedule.ErrMissingField)
			}
			d, err := schedule.ParseWeekday(day)
			if err != nil {
				return err
			}
			if duration <= 0 {
				return fmt.Errorf("duration must be positive, got %d", duration)
			}

			slots := a.sched.FreeSlots(a.store.Entries(), teacherID, roomID, d, duration)
			if len(slots) == 0 {
				fmt.Fprintf(out, "No free %s slots on %s.\n", formatMinutes(duration), d)
				return nil
			}

			fmt.Fprintf(out, "Free %s slots on %s:\n", formatMinutes(duration), formatHeader(d.String()))
			for _, s := range slots {
				fmt.Fprintf(out, "  %s-%s\n", s.Start, s.End)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&teacherRef, "teacher", "", "Teacher id or unique id prefix")
	cmd.Flags().StringVar(&roomRef, "room", "", "Room id or unique id prefix")
	cmd.Flags().StringVar(&day, "day", "", "Weekday (required)")
	cmd.Flags().IntVar(&duration, "duration", 60, "Class length in minutes")
	return cmd
}
