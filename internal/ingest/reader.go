package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/funnel_go/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadAny picks the reader by file extension: .xlsx goes through the
// workbook reader, everything else is treated as delimited text.
func ReadAny(src models.Source, filename string, r io.Reader) (*models.RawTable, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(src, r)
	default:
		return ReadTable(src, r)
	}
}

// ReadTable reads a delimited upload fully into memory. Column names are
// trimmed, cells are left untouched.
func ReadTable(src models.Source, r io.Reader) (*models.RawTable, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedInputError{Source: src, Err: err}
	}
	b = bytes.TrimPrefix(b, utf8BOM)
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, &MalformedInputError{Source: src, Err: errors.New("empty file")}
	}

	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = sniffDelimiter(b)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, malformed(src, err)
	}
	t := &models.RawTable{Source: src, Columns: trimAll(header)}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(src, err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &MalformedInputError{
				Source: src,
				Line:   line,
				Err:    fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)),
			}
		}
		t.Rows = append(t.Rows, pad(rec, len(header)))
	}
	return t, nil
}

// ReadWorkbook reads the first sheet of an xlsx upload. Cells come back as
// the formatted strings Excel would display.
func ReadWorkbook(src models.Source, r io.Reader) (*models.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &MalformedInputError{Source: src, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedInputError{Source: src, Err: errors.New("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &MalformedInputError{Source: src, Err: err}
	}

	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, &MalformedInputError{Source: src, Err: errors.New("empty sheet")}
	}

	header := trimAll(rows[start])
	t := &models.RawTable{Source: src, Columns: header}
	for i, rec := range rows[start+1:] {
		if blank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, &MalformedInputError{
				Source: src,
				Line:   start + i + 2,
				Err:    fmt.Errorf("expected %d cells, saw %d", len(header), len(rec)),
			}
		}
		t.Rows = append(t.Rows, pad(rec, len(header)))
	}
	return t, nil
}

func malformed(src models.Source, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedInputError{Source: src, Line: pe.Line, Err: pe.Err}
	}
	return &MalformedInputError{Source: src, Err: err}
}

// sniffDelimiter looks at the header line only; comma wins ties.
func sniffDelimiter(b []byte) rune {
	line := b
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		line = b[:i]
	}
	best, bestN := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func pad(rec []string, n int) []string {
	if len(rec) == n {
		return rec
	}
	out := make([]string, n)
	copy(out, rec)
	return out
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
