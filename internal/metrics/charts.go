package metrics

import (
	"github.com/samber/lo"

	"github.com/AngelCh415/funnel_go/internal/models"
)

// Charts lays the derived rows out as chart series. Nothing is computed
// here beyond picking fields; CPI gaps stay nil.
func Charts(a *models.Analysis) models.Charts {
	rows := a.Rows
	return models.Charts{
		SpendVsInstalls: models.Chart{
			Title: "Media Spend Impact on Installs",
			Series: []models.Series{
				series(rows, "Media Spend", "bar", "left", func(r models.CombinedRow) *float64 { return ptr(r.Spend) }),
				series(rows, "Total Installs", "line", "right", func(r models.CombinedRow) *float64 { return ptr(r.TotalInstalls) }),
			},
		},
		Funnel: models.Chart{
			Title: "Funnel Progression Over Time",
			Series: []models.Series{
				series(rows, "Installs", "line", "", func(r models.CombinedRow) *float64 { return ptr(r.TotalInstalls) }),
				series(rows, "KYC Completed", "line", "", func(r models.CombinedRow) *float64 { return ptr(r.TotalKYC) }),
				series(rows, "Mobile OTP", "line", "", func(r models.CombinedRow) *float64 { return ptr(r.TotalOTP) }),
			},
		},
		Conversion: models.Chart{
			Title: "Conversion Rates Over Time",
			Series: []models.Series{
				series(rows, "Install → KYC %", "line", "", func(r models.CombinedRow) *float64 { return ptr(r.InstallToKYCPct) }),
				series(rows, "Install → OTP %", "line", "", func(r models.CombinedRow) *float64 { return ptr(r.InstallToOTPPct) }),
			},
		},
		PlatformShare: []models.Slice{
			{Label: "iOS", Value: a.Summary.IOSInstalls},
			{Label: "Android", Value: a.Summary.AndroidInstalls},
		},
		PlatformDaily: models.Chart{
			Title: "Daily Installs by Platform",
			Stack: true,
			Series: []models.Series{
				series(rows, "iOS Installs", "bar", "", func(r models.CombinedRow) *float64 { return ptr(r.IOSInstalls) }),
				series(rows, "Android Installs", "bar", "", func(r models.CombinedRow) *float64 { return ptr(r.AndroidInstalls) }),
			},
		},
		CostPerInstall: models.Chart{
			Title: "Cost Per Install (CPI) Trend",
			Series: []models.Series{
				series(rows, "CPI", "area", "", func(r models.CombinedRow) *float64 { return r.CostPerInstall }),
			},
		},
	}
}

func series(rows []models.CombinedRow, name, kind, axis string, pick func(models.CombinedRow) *float64) models.Series {
	return models.Series{
		Name: name,
		Kind: kind,
		Axis: axis,
		Points: lo.Map(rows, func(r models.CombinedRow, _ int) models.Point {
			return models.Point{Date: r.Date.String(), Value: pick(r)}
		}),
	}
}
