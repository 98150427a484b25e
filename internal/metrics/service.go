package metrics

import (
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/AngelCh415/funnel_go/internal/models"
)

// Table projects the rows onto the detail table columns, rounded for display.
func Table(rows []models.CombinedRow) []models.TableRow {
	return lo.Map(rows, func(r models.CombinedRow, _ int) models.TableRow {
		t := models.TableRow{
			Date:            r.Date.String(),
			Spend:           round2(r.Spend),
			Installs:        r.TotalInstalls,
			KYC:             r.TotalKYC,
			OTP:             r.TotalOTP,
			InstallToKYCPct: round2(r.InstallToKYCPct),
			InstallToOTPPct: round2(r.InstallToOTPPct),
		}
		if r.CostPerInstall != nil {
			t.CPI = ptr(round2(*r.CostPerInstall))
		}
		return t
	})
}

// QueryTable filters the detail table by from/to (YYYY-MM-DD, inclusive)
// and pages it with limit/offset.
func QueryTable(rows []models.CombinedRow, v url.Values) []models.TableRow {
	from, _ := time.Parse("2006-01-02", v.Get("from"))
	to, _ := time.Parse("2006-01-02", v.Get("to"))
	limit := atoiDef(v.Get("limit"), 0)
	offset := atoiDef(v.Get("offset"), 0)

	in := lo.Filter(rows, func(r models.CombinedRow, _ int) bool {
		if !from.IsZero() && r.Date.Before(from) {
			return false
		}
		if !to.IsZero() && r.Date.After(to) {
			return false
		}
		return true
	})

	out := Table(in)
	limit, offset = clampLimitOffset(limit, offset, len(out))
	return paginate(out, limit, offset)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
