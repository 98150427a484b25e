package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/funnel_go/internal/metrics"
	"github.com/AngelCh415/funnel_go/internal/models"
	"github.com/AngelCh415/funnel_go/internal/utils"
)

// Input is one uploaded file. Filename only picks the reader (.xlsx or text).
type Input struct {
	Filename string
	Data     []byte
}

type Uploads struct {
	IOS     Input
	Android Input
	Spend   Input
}

type ETL struct {
	log  *slog.Logger
	inst *utils.Instruments
	now  func() time.Time
}

func NewETL(log *slog.Logger, inst *utils.Instruments) *ETL {
	return &ETL{log: log, inst: inst, now: time.Now}
}

// Run reconciles the three uploads into one analysis. It holds no state
// between calls; the same uploads always give the same rows.
func (e *ETL) Run(ctx context.Context, u Uploads) (a *models.Analysis, err error) {
	start := e.now()
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, &ProcessingError{Err: fmt.Errorf("panic: %v", r)}
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.inst.ObserveRun(outcome, e.now().Sub(start))
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tables [3]*models.DatedTable
	columns := map[models.Source][]string{}
	dropped := map[models.Source]int{}
	for i, s := range []struct {
		src   models.Source
		input Input
	}{
		{models.SourceIOS, u.IOS},
		{models.SourceAndroid, u.Android},
		{models.SourceSpend, u.Spend},
	} {
		raw, err := ReadAny(s.src, s.input.Filename, bytes.NewReader(s.input.Data))
		if err != nil {
			return nil, err
		}
		dt, err := NormalizeDates(raw)
		if err != nil {
			return nil, err
		}
		columns[s.src] = raw.Columns
		dropped[s.src] = dt.Dropped
		e.inst.AddDropped(string(s.src), dt.Dropped)
		e.log.Info("table loaded",
			slog.String("source", string(s.src)),
			slog.Int("rows", len(raw.Rows)),
			slog.Int("dropped", dt.Dropped),
			slog.String("date_column", raw.Columns[dt.DateCol]))
		tables[i] = dt
	}

	ios := Namespace(tables[0], PrefixIOS)
	android := Namespace(tables[1], PrefixAndroid)

	var warnings []string
	idx := metrics.FindSpendColumn(tables[2].Columns, tables[2].DateCol)
	if idx >= 0 {
		e.log.Debug("spend column adopted", slog.String("column", tables[2].Columns[idx]))
	} else {
		warnings = append(warnings, "spend: no spend/amount/cost/media column, spend reads as 0")
	}
	// other spend-file columns never reach the merge
	spend := KeepColumn(tables[2], idx, metrics.SpendColumn)
	warnings = append(warnings, missingStages(ios, metrics.PlatformIOS)...)
	warnings = append(warnings, missingStages(android, metrics.PlatformAndroid)...)
	for _, w := range warnings {
		e.log.Warn("missing metric column", slog.String("detail", w))
	}

	rows := metrics.Derive(Merge(ios, android, spend))
	a = &models.Analysis{
		ID:        uuid.NewString(),
		CreatedAt: e.now().UTC(),
		Rows:      rows,
		Summary:   metrics.Summarize(rows),
		Insights:  metrics.Extract(rows),
		Dropped:   dropped,
		Columns:   columns,
		Warnings:  warnings,
	}
	e.log.Info("pipeline complete",
		slog.String("id", a.ID),
		slog.Int("days", len(rows)),
		slog.Float64("total_spend", a.Summary.TotalSpend),
		slog.Float64("total_installs", a.Summary.TotalInstalls))
	return a, nil
}

// missingStages lists the funnel stages with no column for platform p.
func missingStages(t *models.DatedTable, p metrics.Platform) []string {
	seen := map[metrics.Kind]bool{}
	for i, c := range t.Columns {
		if i == t.DateCol {
			continue
		}
		if cl := metrics.Classify(c); cl.Platform == p {
			seen[cl.Kind] = true
		}
	}
	var out []string
	for _, k := range []metrics.Kind{metrics.KindInstall, metrics.KindKYC, metrics.KindOTP} {
		if !seen[k] {
			out = append(out, fmt.Sprintf("%s: no %s column, %s reads as 0", p, k, k))
		}
	}
	return out
}
