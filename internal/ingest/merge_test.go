package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/funnel_go/internal/models"
)

func dated(t *testing.T, src models.Source, columns []string, rows ...[]string) *models.DatedTable {
	t.Helper()
	dt, err := NormalizeDates(&models.RawTable{Source: src, Columns: columns, Rows: rows})
	require.NoError(t, err)
	return dt
}

func TestNamespace(t *testing.T) {
	dt := dated(t, models.SourceIOS, []string{"Installs", "Date", "KYC"}, []string{"1", "2024-01-01", "2"})
	ns := Namespace(dt, PrefixIOS)
	assert.Equal(t, []string{"ios_Installs", "Date", "ios_KYC"}, ns.Columns)
	assert.Equal(t, []string{"Installs", "Date", "KYC"}, dt.Columns, "input must not change")
}

func TestKeepColumn(t *testing.T) {
	dt := dated(t, models.SourceSpend, []string{"Campaign", "Date", "Media Spend", "spend"},
		[]string{"brand", "2024-01-01", "400", "999"})

	kept := KeepColumn(dt, 2, "spend")
	assert.Equal(t, 0, kept.DateCol)
	assert.Equal(t, []string{"Date", "spend"}, kept.Columns)
	assert.Equal(t, [][]string{{"2024-01-01", "400"}}, kept.Rows)
	assert.Equal(t, dt.Dates, kept.Dates)
	assert.Len(t, dt.Columns, 4, "input must not change")

	none := KeepColumn(dt, -1, "spend")
	assert.Equal(t, []string{"Date"}, none.Columns)
	assert.Equal(t, map[string]float64{}, Merge(none)[0].Values)
}

func TestMergeOuterJoin(t *testing.T) {
	ios := Namespace(dated(t, models.SourceIOS, []string{"Date", "Installs"},
		[]string{"2024-01-02", "10"},
		[]string{"2024-01-01", "5"},
	), PrefixIOS)
	android := Namespace(dated(t, models.SourceAndroid, []string{"Date", "Installs"},
		[]string{"2024-01-02", "7"},
		[]string{"2024-01-04", "1"},
	), PrefixAndroid)
	spend := dated(t, models.SourceSpend, []string{"Date", "spend"},
		[]string{"2024-01-03", "300"},
		[]string{"2024-01-02", "₹1,200.50"},
	)

	rows := Merge(ios, android, spend)
	require.Len(t, rows, 4)

	var dates []string
	for _, r := range rows {
		dates = append(dates, r.Date.String())
		assert.Len(t, r.Values, 3, "every row carries every column")
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, dates)

	assert.Equal(t, map[string]float64{"ios_Installs": 5, "android_Installs": 0, "spend": 0}, rows[0].Values)
	assert.Equal(t, map[string]float64{"ios_Installs": 10, "android_Installs": 7, "spend": 1200.5}, rows[1].Values)
	assert.Equal(t, map[string]float64{"ios_Installs": 0, "android_Installs": 0, "spend": 300}, rows[2].Values)
	assert.Equal(t, map[string]float64{"ios_Installs": 0, "android_Installs": 1, "spend": 0}, rows[3].Values)
}

func TestMergeSumsDuplicateDates(t *testing.T) {
	ios := Namespace(dated(t, models.SourceIOS, []string{"Date", "Installs"},
		[]string{"2024-01-01", "3"},
		[]string{"2024-01-01 12:00:00", "4"},
	), PrefixIOS)
	rows := Merge(ios)
	require.Len(t, rows, 1)
	assert.Equal(t, 7.0, rows[0].Values["ios_Installs"])
}

func TestMergeEmptyInputs(t *testing.T) {
	ios := dated(t, models.SourceIOS, []string{"Date", "Installs"})
	android := dated(t, models.SourceAndroid, []string{"Date", "Installs"})
	spend := dated(t, models.SourceSpend, []string{"Date", "Spend"})
	assert.Empty(t, Merge(Namespace(ios, PrefixIOS), Namespace(android, PrefixAndroid), spend))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"1,234", 1234, true},
		{"$1,234.50", 1234.5, true},
		{"₹ 2,000", 2000, true},
		{"(12.50)", -12.5, true},
		{"45%", 45, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
