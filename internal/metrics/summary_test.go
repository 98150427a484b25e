package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/funnel_go/internal/models"
)

func derived(t *testing.T) []models.CombinedRow {
	t.Helper()
	return Derive([]models.CombinedRow{
		row("2024-01-01", map[string]float64{"ios_installs": 100, "ios_kyc": 40, "ios_otp": 20, SpendColumn: 2000}),
		row("2024-01-02", map[string]float64{"ios_installs": 0, "ios_kyc": 0, "ios_otp": 0, SpendColumn: 500}),
		row("2024-01-03", map[string]float64{"ios_installs": 50, "ios_kyc": 30, "ios_otp": 10, SpendColumn: 500}),
	})
}

func TestSummarize(t *testing.T) {
	s := Summarize(derived(t))

	assert.Equal(t, 3000.0, s.TotalSpend)
	assert.Equal(t, 150.0, s.TotalInstalls)
	assert.Equal(t, 70.0, s.TotalKYC)
	assert.Equal(t, 30.0, s.TotalOTP)
	assert.Equal(t, 20.0, s.AvgCostPerInstall)
	// from the totals, not the mean of daily rates
	assert.InDelta(t, 70.0/150*100, s.InstallToKYCPct, 1e-9)
	assert.InDelta(t, 20.0, s.InstallToOTPPct, 1e-9)
	assert.InDelta(t, 30.0/70*100, s.KYCToOTPPct, 1e-9)
	assert.Equal(t, 150.0, s.IOSInstalls)
	assert.Zero(t, s.AndroidInstalls)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalSpend)
	assert.Zero(t, s.AvgCostPerInstall)
	assert.Zero(t, s.InstallToKYCPct)
}

func TestExtract(t *testing.T) {
	in := Extract(derived(t))

	// 2024-01-01 CPI 20, 2024-01-03 CPI 10, 2024-01-02 undefined
	assert.Equal(t, "2024-01-03", in.BestCPIDay.Date)
	require.NotNil(t, in.BestCPIDay.Value)
	assert.Equal(t, 10.0, *in.BestCPIDay.Value)

	assert.Equal(t, "2024-01-03", in.BestConversionDay.Date)
	require.NotNil(t, in.BestConversionDay.Value)
	assert.InDelta(t, 60.0, *in.BestConversionDay.Value, 1e-9)

	assert.InDelta(t, (40.0+0+60)/3, in.AvgInstallToKYCPct, 1e-9)
	assert.InDelta(t, (20.0+0+20)/3, in.AvgInstallToOTPPct, 1e-9)
}

func TestExtractTiesPickEarliestDate(t *testing.T) {
	rows := Derive([]models.CombinedRow{
		row("2024-02-01", map[string]float64{"ios_installs": 10, "ios_kyc": 5, SpendColumn: 100}),
		row("2024-02-02", map[string]float64{"android_installs": 20, "android_kyc": 10, SpendColumn: 200}),
	})
	in := Extract(rows)
	assert.Equal(t, "2024-02-01", in.BestCPIDay.Date)
	assert.Equal(t, "2024-02-01", in.BestConversionDay.Date)
}

func TestExtractWithoutDefinedCPI(t *testing.T) {
	rows := Derive([]models.CombinedRow{
		row("2024-03-01", map[string]float64{SpendColumn: 100}),
	})
	in := Extract(rows)
	assert.Equal(t, "N/A", in.BestCPIDay.Date)
	assert.Nil(t, in.BestCPIDay.Value)
	assert.Equal(t, "2024-03-01", in.BestConversionDay.Date)
	assert.Equal(t, 0.0, *in.BestConversionDay.Value)
}

func TestExtractEmpty(t *testing.T) {
	in := Extract(nil)
	assert.Equal(t, "N/A", in.BestCPIDay.Date)
	assert.Equal(t, "N/A", in.BestConversionDay.Date)
	assert.Zero(t, in.AvgInstallToKYCPct)
	assert.Zero(t, in.AvgInstallToOTPPct)
}

func TestFiniteMeanTreatsNonFiniteAsZero(t *testing.T) {
	rows := []models.CombinedRow{
		{InstallToKYCPct: math.Inf(1)},
		{InstallToKYCPct: math.NaN()},
		{InstallToKYCPct: 30},
	}
	got := finiteMean(rows, func(r models.CombinedRow) float64 { return r.InstallToKYCPct })
	assert.Equal(t, 10.0, got)
}
