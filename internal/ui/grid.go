package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/schedule"
	"github.com/javiermolinar/timetable/internal/summary"
)

const (
	timeColWidth = 5
	minCellWidth = 8
)

var (
	gridHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	gridTimeStyle   = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	gridEmptyStyle  = lipgloss.NewStyle().Padding(0, 1)
	gridStartStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1)
	gridBodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Padding(0, 1)
	gridBorderStyle = lipgloss.NewStyle().Faint(true)
)

func (a *App) gridCmd() *cobra.Command {
	var (
		teacherRef string
		noColor    bool
		copyOut    bool
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show a teacher's week as a timetable",
		Long: `Show a teacher's week with one row per time mark and one column per day.

A class fills every row from its start up to, but not including, its end.`,
		Example: `  timetable grid --teacher 3f2a
  timetable grid --teacher 3f2a --no-color --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureStore(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			id, err := resolveID("teacher", a.knownTeacherIDs(), teacherRef)
			if err != nil {
				return err
			}
			if id == "" {
				return fmt.Errorf("%w: teacher", schedule.ErrMissingField)
			}
			teacher, ok := a.catalog.Teacher(id)
			if !ok {
				teacher = schedule.Teacher{ID: id}
			}

			grid := a.store.Grid(id, a.sched.Days(), a.sched.Marks())
			week := summary.SummarizeTeacher(teacher, a.store.ListByTeacher(id))

			var b strings.Builder
			fmt.Fprintf(&b, "%s  %s\n", formatHeader(a.catalog.TeacherName(id)), formatMuted(classCount(week.Classes)))
			b.WriteString(renderGrid(a.catalog, grid, termWidth()))
			b.WriteString("\n")
			for _, e := range week.Entries {
				fmt.Fprintf(&b, "  %s\n", formatEntry(a.catalog, e))
			}

			fmt.Fprint(out, b.String())

			if copyOut {
				if err := clipboard.WriteAll(ansi.Strip(b.String())); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(out, formatMuted("Copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&teacherRef, "teacher", "", "Teacher id or unique id prefix (required)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the timetable to the clipboard")
	return cmd
}

// renderGrid draws the grid as a bordered table no wider than width.
// A class shows its subject on its first row and its room on the second.
func renderGrid(c *schedule.Catalog, g *schedule.Grid, width int) string {
	cellW := cellWidth(width, len(g.Days))

	headers := make([]string, 0, len(g.Days)+1)
	headers = append(headers, "")
	for _, d := range g.Days {
		headers = append(headers, d.Short())
	}

	rows := make([][]string, 0, len(g.Marks))
	styles := make([][]lipgloss.Style, 0, len(g.Marks))
	for i, mark := range g.Marks {
		row := []string{mark}
		rowStyles := []lipgloss.Style{gridTimeStyle}
		for _, d := range g.Days {
			e, ok := g.At(d, mark)
			switch {
			case !ok:
				row = append(row, "")
				rowStyles = append(rowStyles, gridEmptyStyle)
			case g.IsStart(d, mark):
				row = append(row, ansi.Truncate(c.SubjectName(e.SubjectID), cellW, "…"))
				rowStyles = append(rowStyles, gridStartStyle)
			case i > 0 && g.IsStart(d, g.Marks[i-1]):
				row = append(row, ansi.Truncate(c.RoomName(e.RoomID), cellW, "…"))
				rowStyles = append(rowStyles, gridBodyStyle)
			default:
				row = append(row, "┊")
				rowStyles = append(rowStyles, gridBodyStyle)
			}
		}
		rows = append(rows, row)
		styles = append(styles, rowStyles)
	}

	t := table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderHeader(true).
		BorderColumn(true).
		BorderRow(false).
		BorderStyle(gridBorderStyle).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return gridHeaderStyle
			}
			if row < 0 || row >= len(styles) || col < 0 || col >= len(styles[row]) {
				return lipgloss.NewStyle()
			}
			style := styles[row][col]
			if col > 0 {
				style = style.Width(cellW + 2)
			}
			return style
		})

	return t.Render()
}

// cellWidth splits the space left after the time column and borders across
// the day columns.
func cellWidth(width, days int) int {
	if days <= 0 {
		return minCellWidth
	}
	// time column with padding, plus one border per column and the outer edge
	avail := width - (timeColWidth + 2) - (days + 2) - days*2
	return max(minCellWidth, avail/days)
}
