// Package export writes timetables to XLSX workbooks and imports catalogs
// from them.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/javiermolinar/timetable/internal/schedule"
	"github.com/javiermolinar/timetable/internal/summary"
)

// Sheet names.
const (
	ClassesSheet  = "Classes"
	TeachersSheet = "Teachers"
	SubjectsSheet = "Subjects"
	RoomsSheet    = "Rooms"
)

const maxSheetName = 31

var classesHeader = []any{"Day", "Start", "End", "Teacher", "Subject", "Room", "ID"}

// Timetable builds a workbook with a Classes sheet listing every entry and
// one grid sheet per teacher who has classes. Grid rows are marks and
// columns are days.
func Timetable(catalog *schedule.Catalog, entries []schedule.Entry, days []schedule.Weekday, marks []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), ClassesSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("naming classes sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeClasses(f, catalog, entries, bold); err != nil {
		_ = f.Close()
		return nil, err
	}

	used := map[string]bool{ClassesSheet: true}
	for _, week := range summary.Teachers(catalog, entries, "") {
		if week.Classes == 0 {
			continue
		}
		name := sheetName(week.Teacher.FullName(), used)
		if err := writeGrid(f, name, catalog, entries, week.Teacher.ID, days, marks, bold); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return f, nil
}

// WriteTimetable writes the workbook built by Timetable to w.
func WriteTimetable(w io.Writer, catalog *schedule.Catalog, entries []schedule.Entry, days []schedule.Weekday, marks []string) error {
	f, err := Timetable(catalog, entries, days, marks)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeClasses(f *excelize.File, catalog *schedule.Catalog, entries []schedule.Entry, headerStyle int) error {
	if err := f.SetSheetRow(ClassesSheet, "A1", &classesHeader); err != nil {
		return fmt.Errorf("writing classes header: %w", err)
	}
	if err := f.SetCellStyle(ClassesSheet, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("styling classes header: %w", err)
	}

	sorted := append([]schedule.Entry(nil), entries...)
	summary.SortEntries(sorted)

	for i, e := range sorted {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			e.Day.String(),
			e.Start,
			e.End,
			catalog.TeacherName(e.TeacherID),
			catalog.SubjectName(e.SubjectID),
			catalog.RoomName(e.RoomID),
			e.ID,
		}
		if err := f.SetSheetRow(ClassesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing class %s: %w", e.ID, err)
		}
	}

	if err := f.SetColWidth(ClassesSheet, "A", "F", 20); err != nil {
		return fmt.Errorf("sizing classes columns: %w", err)
	}
	return nil
}

func writeGrid(f *excelize.File, sheet string, catalog *schedule.Catalog, entries []schedule.Entry, teacherID string, days []schedule.Weekday, marks []string, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}

	header := make([]any, 0, len(days)+1)
	header = append(header, "Time")
	for _, d := range days {
		header = append(header, d.String())
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing grid header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(days) + 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling grid header: %w", err)
	}

	grid := schedule.ProjectGrid(entries, teacherID, days, marks)
	for r, mark := range marks {
		row := make([]any, 0, len(days)+1)
		row = append(row, mark)
		for _, d := range days {
			e, ok := grid.At(d, mark)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, catalog.SubjectName(e.SubjectID)+" / "+catalog.RoomName(e.RoomID))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing grid row %s: %w", mark, err)
		}
	}

	if err := f.SetColWidth(sheet, "B", lastCol, 24); err != nil {
		return fmt.Errorf("sizing grid columns: %w", err)
	}
	return nil
}

// sheetName turns a teacher name into a unique, valid sheet name.
func sheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Teacher"
	}
	name = truncateRunes(name, maxSheetName)

	candidate := name
	for n := 2; used[strings.ToLower(candidate)] || strings.EqualFold(candidate, ClassesSheet); n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ImportResult counts what ImportCatalog did.
type ImportResult struct {
	Teachers int
	Subjects int
	Rooms    int
	Skipped  int // incomplete rows
}

// ImportCatalog reads the Teachers (given, family), Subjects (name, code) and
// Rooms (name) sheets and creates a record in repo for every complete row.
// The first row of each sheet is a header. Missing sheets are ignored.
func ImportCatalog(ctx context.Context, r io.Reader, repo schedule.CatalogRepository) (ImportResult, error) {
	var result ImportResult

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	err = eachRow(f, TeachersSheet, func(row []string) error {
		t, err := schedule.NewTeacher(cellAt(row, 0), cellAt(row, 1))
		if err != nil {
			result.Skipped++
			return nil
		}
		if err := repo.CreateTeacher(ctx, t); err != nil {
			return err
		}
		result.Teachers++
		return nil
	})
	if err != nil {
		return result, err
	}

	err = eachRow(f, SubjectsSheet, func(row []string) error {
		s, err := schedule.NewSubject(cellAt(row, 0), cellAt(row, 1))
		if err != nil {
			result.Skipped++
			return nil
		}
		if err := repo.CreateSubject(ctx, s); err != nil {
			return err
		}
		result.Subjects++
		return nil
	})
	if err != nil {
		return result, err
	}

	err = eachRow(f, RoomsSheet, func(row []string) error {
		rm, err := schedule.NewRoom(cellAt(row, 0))
		if err != nil {
			result.Skipped++
			return nil
		}
		if err := repo.CreateRoom(ctx, rm); err != nil {
			return err
		}
		result.Rooms++
		return nil
	})
	return result, err
}

// eachRow calls fn for every non-header row of sheet.
func eachRow(f *excelize.File, sheet string, fn func(row []string) error) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if isBlank(row) {
			continue
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
