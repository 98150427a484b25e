package ingest

import (
	"strings"
	"time"

	"github.com/AngelCh415/funnel_go/internal/models"
)

// Accepted date layouts, tried in order. Ambiguous numeric dates are read
// month first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006",
	"1-2-2006",
	"01-02-06",
	"1/2/06",
	"2006/01/02",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
}

// ParseDate returns the calendar day of s, or false when no layout fits.
func ParseDate(s string) (models.DateKey, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.DateKey{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDateKey(t), true
		}
	}
	return models.DateKey{}, false
}

// DetectDateColumn returns the index of the first column whose name
// contains "date", case-insensitively.
func DetectDateColumn(t *models.RawTable) (int, error) {
	for i, c := range t.Columns {
		if strings.Contains(strings.ToLower(c), "date") {
			return i, nil
		}
	}
	return -1, &MissingDateColumnError{Source: t.Source}
}

// NormalizeDates parses the date column of t. Rows whose date does not parse
// are dropped and counted.
func NormalizeDates(t *models.RawTable) (*models.DatedTable, error) {
	col, err := DetectDateColumn(t)
	if err != nil {
		return nil, err
	}
	out := &models.DatedTable{
		Source:  t.Source,
		DateCol: col,
		Columns: t.Columns,
		Dates:   make([]models.DateKey, 0, len(t.Rows)),
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		d, ok := ParseDate(row[col])
		if !ok {
			out.Dropped++
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
