// Package export renders materialized timetables into spreadsheet form.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"classcal/internal/model"
	"classcal/internal/timetable"
)

var slotNames = [timetable.DaysPerWeek]string{"Poniedziałek", "Wtorek", "Środa", "Czwartek", "Piątek"}

// SheetName is the worksheet title for a 1-indexed term week.
func SheetName(week int) string {
	return fmt.Sprintf("Tydzień %d", week)
}

// rowKey groups events sharing a wall-clock period.
type rowKey struct {
	start, end string
}

// WriteXLSX writes one sheet per term week.
//
// Layout of each sheet:
//   - row 1: week title
//   - row 2: "Godziny" | one column per week slot (weekday name + date)
//   - then one row per distinct time period, sorted by start time; a cell
//     lists "<summary> (<location>)" for each event, one per line.
func WriteXLSX(w io.Writer, s *timetable.Schedule, events []model.Event) error {
	f := excelize.NewFile()
	defer f.Close()

	byWeek := make(map[int][]model.Event)
	for _, ev := range events {
		byWeek[ev.Week] = append(byWeek[ev.Week], ev)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return errors.Wrap(err, "create cell style")
	}

	for wi, week := range s.Weeks {
		weekNo := wi + 1
		sheet := SheetName(weekNo)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return errors.Wrapf(err, "create sheet %q", sheet)
		}
		if wi == 0 {
			f.SetActiveSheet(idx)
		}

		if err := writeWeek(f, sheet, weekNo, week, byWeek[weekNo], headerStyle, cellStyle); err != nil {
			return err
		}
	}

	if len(s.Weeks) > 0 {
		// Drop the default sheet created by NewFile.
		f.DeleteSheet("Sheet1")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}

func writeWeek(f *excelize.File, sheet string, weekNo int, week timetable.Week, events []model.Event, headerStyle, cellStyle int) error {
	lastCol := colName(timetable.DaysPerWeek)

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", lastCol, 32)

	// Title row.
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s – %s)", SheetName(weekNo), week[0], week[timetable.DaysPerWeek-1]))
	f.MergeCell(sheet, "A1", lastCol+"1")
	f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

	// Header row.
	f.SetCellValue(sheet, "A2", "Godziny")
	for slot, d := range week {
		f.SetCellValue(sheet, cell(colName(slot+1), 2), slotNames[slot]+" "+d.String())
	}
	f.SetCellStyle(sheet, "A2", lastCol+"2", headerStyle)

	slotOf := make(map[timetable.Date]int, timetable.DaysPerWeek)
	for slot, d := range week {
		if _, ok := slotOf[d]; !ok {
			slotOf[d] = slot
		}
	}

	cells := make(map[rowKey][timetable.DaysPerWeek][]string)
	var rows []rowKey
	for _, ev := range events {
		slot, ok := slotOf[timetable.DateOf(ev.Start)]
		if !ok {
			continue
		}
		k := rowKey{start: ev.Start.Format("15:04"), end: ev.End.Format("15:04")}
		line, seen := cells[k]
		if !seen {
			rows = append(rows, k)
		}
		text := ev.Summary
		if ev.Location != "" {
			text += " (" + ev.Location + ")"
		}
		line[slot] = append(line[slot], text)
		cells[k] = line
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].start != rows[j].start {
			return rows[i].start < rows[j].start
		}
		return rows[i].end < rows[j].end
	})

	for i, k := range rows {
		row := i + 3
		f.SetCellValue(sheet, cell("A", row), k.start+"-"+k.end)
		line := cells[k]
		for slot := range timetable.DaysPerWeek {
			if len(line[slot]) == 0 {
				continue
			}
			f.SetCellValue(sheet, cell(colName(slot+1), row), strings.Join(line[slot], "\n"))
		}
		f.SetCellStyle(sheet, cell("A", row), cell(lastCol, row), cellStyle)
	}
	return nil
}

// colName converts a 0-indexed column offset to its letter name.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
