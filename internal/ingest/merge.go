package ingest

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/funnel_go/internal/models"
)

const (
	PrefixIOS     = "ios_"
	PrefixAndroid = "android_"
)

// Namespace prefixes every non-date column so iOS and Android headers do
// not collide after the merge.
func Namespace(t *models.DatedTable, prefix string) *models.DatedTable {
	out := *t
	out.Columns = make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if i == t.DateCol {
			out.Columns[i] = c
			continue
		}
		out.Columns[i] = prefix + c
	}
	return &out
}

// KeepColumn returns a copy of t holding only its date column and column i,
// renamed to name. A negative i keeps the date column alone.
func KeepColumn(t *models.DatedTable, i int, name string) *models.DatedTable {
	out := *t
	out.DateCol = 0
	out.Columns = []string{t.Columns[t.DateCol]}
	if i >= 0 {
		out.Columns = append(out.Columns, name)
	}
	out.Rows = make([][]string, len(t.Rows))
	for r, cells := range t.Rows {
		row := []string{cells[t.DateCol]}
		if i >= 0 {
			row = append(row, cells[i])
		}
		out.Rows[r] = row
	}
	return &out
}

// Merge outer-joins the tables on their date. Every row of the result
// carries every non-date column of every table; cells with no contributing
// source row are zero. Duplicate dates inside a table are summed. Rows come
// back sorted by date.
func Merge(tables ...*models.DatedTable) []models.CombinedRow {
	var columns []string
	for _, t := range tables {
		for i, c := range t.Columns {
			if i != t.DateCol {
				columns = append(columns, c)
			}
		}
	}
	columns = lo.Uniq(columns)

	byDate := map[models.DateKey]*models.CombinedRow{}
	get := func(d models.DateKey) *models.CombinedRow {
		row, ok := byDate[d]
		if !ok {
			row = &models.CombinedRow{Date: d, Values: make(map[string]float64, len(columns))}
			for _, c := range columns {
				row.Values[c] = 0
			}
			byDate[d] = row
		}
		return row
	}

	for _, t := range tables {
		for r, cells := range t.Rows {
			row := get(t.Dates[r])
			for i, c := range t.Columns {
				if i == t.DateCol {
					continue
				}
				v, _ := ParseNumber(cells[i])
				row.Values[c] += v
			}
		}
	}

	dates := lo.Keys(byDate)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })
	out := make([]models.CombinedRow, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out
}

var numberNoise = strings.NewReplacer(
	",", "", " ", "", "\u00a0", "", "%", "",
	"$", "", "₹", "", "€", "", "£", "",
)

// ParseNumber reads a numeric cell. Currency symbols, thousands separators and
// percent signs are ignored and "(12.50)" reads as -12.50. Blank or
// non-numeric cells read as zero with ok=false.
func ParseNumber(s string) (float64, bool) {
	s = numberNoise.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if neg {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, true
}
