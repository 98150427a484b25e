package metrics

import (
	"sort"

	"github.com/AngelCh415/funnel_go/internal/models"
)

// Derive fills the platform sums, totals, conversion percentages and cost
// per install of every row. It only reads row.Values, so running it again on
// its own output gives the same numbers.
func Derive(rows []models.CombinedRow) []models.CombinedRow {
	out := make([]models.CombinedRow, len(rows))
	classes := map[string]Class{}
	for i, r := range rows {
		keys := make([]string, 0, len(r.Values))
		for k := range r.Values {
			if _, ok := classes[k]; !ok {
				classes[k] = Classify(k)
			}
			keys = append(keys, k)
		}
		// fixed summation order keeps float results reproducible
		sort.Strings(keys)

		d := r
		d.IOSInstalls, d.AndroidInstalls = 0, 0
		d.IOSKYC, d.AndroidKYC = 0, 0
		d.IOSOTP, d.AndroidOTP = 0, 0
		for _, k := range keys {
			c := classes[k]
			v := r.Values[k]
			switch {
			case c.Platform == PlatformIOS && c.Kind == KindInstall:
				d.IOSInstalls += v
			case c.Platform == PlatformAndroid && c.Kind == KindInstall:
				d.AndroidInstalls += v
			case c.Platform == PlatformIOS && c.Kind == KindKYC:
				d.IOSKYC += v
			case c.Platform == PlatformAndroid && c.Kind == KindKYC:
				d.AndroidKYC += v
			case c.Platform == PlatformIOS && c.Kind == KindOTP:
				d.IOSOTP += v
			case c.Platform == PlatformAndroid && c.Kind == KindOTP:
				d.AndroidOTP += v
			}
		}
		d.TotalInstalls = d.IOSInstalls + d.AndroidInstalls
		d.TotalKYC = d.IOSKYC + d.AndroidKYC
		d.TotalOTP = d.IOSOTP + d.AndroidOTP
		d.Spend = r.Values[SpendColumn]

		d.InstallToKYCPct = pct(d.TotalKYC, d.TotalInstalls)
		d.InstallToOTPPct = pct(d.TotalOTP, d.TotalInstalls)
		d.KYCToOTPPct = pct(d.TotalOTP, d.TotalKYC)
		d.CostPerInstall = nil
		if d.TotalInstalls > 0 {
			cpi := d.Spend / d.TotalInstalls
			d.CostPerInstall = &cpi
		}
		out[i] = d
	}
	return out
}

// pct is num/den*100, or 0 when den is not positive.
func pct(num, den float64) float64 {
	if den > 0 {
		return num / den * 100
	}
	return 0
}
