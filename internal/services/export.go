package services

import (
	"bytes"
	"encoding/csv"

	"github.com/pmarinho/classxp/internal/models"
)

// criterionMarks are the single-letter cell marks of the grid CSV.
var criterionMarks = map[models.CheckType]string{
	models.CheckPresence:    "P",
	models.CheckVerse:       "V",
	models.CheckBehavior:    "B",
	models.CheckMaterial:    "M",
	models.CheckInClassTask: "C",
	models.CheckTask:        "T",
}

// MonthlyGridCSV renders a monthly grid as CSV: one row per student, one
// column per Sunday, each cell listing the marks of the completed criteria
// ("-" when nothing was recorded).
func MonthlyGridCSV(grid *MonthlyGrid) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := append([]string{"student"}, grid.Sundays...)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range grid.Rows {
		rec := []string{row.StudentName}
		for _, sunday := range grid.Sundays {
			chk, ok := row.Checks[sunday]
			if !ok {
				rec = append(rec, "-")
				continue
			}
			cell := ""
			for _, t := range models.AllChecks {
				if chk.Get(t) {
					cell += criterionMarks[t]
				}
			}
			if cell == "" {
				cell = "-"
			}
			rec = append(rec, cell)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
