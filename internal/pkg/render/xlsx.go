package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/pkg/timeslot"
)

// SheetName is the worksheet holding the grid.
const SheetName = "시간표"

// WriteXLSX writes the timetable as a single-sheet workbook. Head cells
// spanning several periods become merged ranges.
func WriteXLSX(w io.Writer, t *domain.Timetable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	base, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    borders(),
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	fills := make(map[string]int)
	fillStyle := func(hex string) (int, error) {
		if id, ok := fills[hex]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    borders(),
		})
		if err != nil {
			return 0, err
		}
		fills[hex] = id
		return id, nil
	}

	rows := t.VisibleRows()
	lastCol := len(timeslot.Days) + 1

	for i, day := range timeslot.Days {
		if err := setCell(f, i+2, 1, day.String()); err != nil {
			return err
		}
	}
	for p := 1; p <= rows; p++ {
		if err := setCell(f, 1, p+1, p); err != nil {
			return err
		}
	}
	if err := styleRange(f, 1, 1, lastCol, rows+1, base); err != nil {
		return err
	}

	for i, day := range timeslot.Days {
		col := i + 2
		for p := 1; p <= rows; p++ {
			cell := t.Cell(domain.Key{Day: day, Period: p})
			if cell.Kind != domain.CellHead {
				continue
			}
			course, ok := t.Course(cell.CourseID)
			if !ok {
				continue
			}
			label := domain.LabelFor(&course)
			text := strings.Join(append([]string{label.Title, label.Meta}, label.Places...), "\n")

			top, bottom := p+1, p+cell.RowSpan
			if err := setCell(f, col, top, text); err != nil {
				return err
			}
			if cell.RowSpan > 1 {
				if err := mergeRange(f, col, top, col, bottom); err != nil {
					return err
				}
			}
			style, err := fillStyle(course.Color.Hex())
			if err != nil {
				return fmt.Errorf("create fill style: %w", err)
			}
			if err := styleRange(f, col, top, col, bottom, style); err != nil {
				return err
			}
		}
	}

	row := rows + 2
	for _, course := range t.Extras() {
		if err := setCell(f, 1, row, domain.ExtraLabel(&course)); err != nil {
			return err
		}
		if err := mergeRange(f, 1, row, lastCol, row); err != nil {
			return err
		}
		style, err := fillStyle(course.Color.Hex())
		if err != nil {
			return fmt.Errorf("create fill style: %w", err)
		}
		if err := styleRange(f, 1, row, lastCol, row, style); err != nil {
			return err
		}
		row++
	}

	if err := setCell(f, 1, row+1, "학점"); err != nil {
		return err
	}
	if err := setCell(f, 2, row+1, t.Credits()); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetName, "A", "A", 6); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "F", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "top", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func mergeRange(f *excelize.File, col1, row1, col2, row2 int) error {
	top, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	bottom, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, top, bottom); err != nil {
		return fmt.Errorf("merge %s:%s: %w", top, bottom, err)
	}
	return nil
}

func styleRange(f *excelize.File, col1, row1, col2, row2, style int) error {
	top, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	bottom, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, top, bottom, style); err != nil {
		return fmt.Errorf("style %s:%s: %w", top, bottom, err)
	}
	return nil
}
