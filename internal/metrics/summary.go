package metrics

import (
	"math"

	"github.com/samber/lo"

	"github.com/AngelCh415/funnel_go/internal/models"
)

const notAvailable = "N/A"

// Summarize totals the derived rows. Overall percentages come from the
// summed totals, not from averaging the daily percentages.
func Summarize(rows []models.CombinedRow) models.Summary {
	s := models.Summary{
		TotalSpend:      lo.SumBy(rows, func(r models.CombinedRow) float64 { return r.Spend }),
		TotalInstalls:   lo.SumBy(rows, func(r models.CombinedRow) float64 { return r.TotalInstalls }),
		TotalKYC:        lo.SumBy(rows, func(r models.CombinedRow) float64 { return r.TotalKYC }),
		TotalOTP:        lo.SumBy(rows, func(r models.CombinedRow) float64 { return r.TotalOTP }),
		IOSInstalls:     lo.SumBy(rows, func(r models.CombinedRow) float64 { return r.IOSInstalls }),
		AndroidInstalls: lo.SumBy(rows, func(r models.CombinedRow) float64 { return r.AndroidInstalls }),
	}
	if s.TotalInstalls > 0 {
		s.AvgCostPerInstall = s.TotalSpend / s.TotalInstalls
	}
	s.InstallToKYCPct = pct(s.TotalKYC, s.TotalInstalls)
	s.InstallToOTPPct = pct(s.TotalOTP, s.TotalInstalls)
	s.KYCToOTPPct = pct(s.TotalOTP, s.TotalKYC)
	return s
}

// Extract picks the best days and the mean daily conversion. On ties the
// earliest date wins.
func Extract(rows []models.CombinedRow) models.Insights {
	in := models.Insights{
		BestCPIDay:        models.Insight{Date: notAvailable},
		BestConversionDay: models.Insight{Date: notAvailable},
	}

	var bestCPI *models.CombinedRow
	for i := range rows {
		r := &rows[i]
		if r.CostPerInstall == nil {
			continue
		}
		if bestCPI == nil || *r.CostPerInstall < *bestCPI.CostPerInstall {
			bestCPI = r
		}
	}
	if bestCPI != nil {
		in.BestCPIDay = models.Insight{Date: bestCPI.Date.String(), Value: ptr(*bestCPI.CostPerInstall)}
	}

	if len(rows) > 0 {
		best := 0
		for i := 1; i < len(rows); i++ {
			if rows[i].InstallToKYCPct > rows[best].InstallToKYCPct {
				best = i
			}
		}
		in.BestConversionDay = models.Insight{Date: rows[best].Date.String(), Value: ptr(rows[best].InstallToKYCPct)}
	}

	in.AvgInstallToKYCPct = finiteMean(rows, func(r models.CombinedRow) float64 { return r.InstallToKYCPct })
	in.AvgInstallToOTPPct = finiteMean(rows, func(r models.CombinedRow) float64 { return r.InstallToOTPPct })
	return in
}

// finiteMean averages f over rows, counting NaN and ±Inf as zero.
func finiteMean(rows []models.CombinedRow, f func(models.CombinedRow) float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := lo.SumBy(rows, func(r models.CombinedRow) float64 {
		v := f(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	})
	return sum / float64(len(rows))
}

func ptr(f float64) *float64 { return &f }
