package models

import (
	"encoding/json"
	"time"
)

// Source identifies which upload a table came from.
type Source string

const (
	SourceIOS     Source = "ios"
	SourceAndroid Source = "android"
	SourceSpend   Source = "spend"
)

// RawTable is one uploaded file: trimmed headers and verbatim cells.
type RawTable struct {
	Source  Source
	Columns []string
	Rows    [][]string
}

// DatedTable is a RawTable whose date column has been parsed; rows that failed
// to parse are already gone.
type DatedTable struct {
	Source  Source
	DateCol int
	Columns []string
	Dates   []DateKey
	Rows    [][]string
	Dropped int
}

// DateKey is a calendar day in UTC.
type DateKey struct{ time.Time }

func NewDateKey(t time.Time) DateKey {
	y, m, d := t.Date()
	return DateKey{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d DateKey) String() string { return d.Format("2006-01-02") }

func (d DateKey) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *DateKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = NewDateKey(t)
	return nil
}

// CombinedRow is one merged day. Values holds every namespaced source column
// (zero when the source had no row for the date); the typed fields are filled
// by the metric deriver.
type CombinedRow struct {
	Date   DateKey            `json:"date"`
	Values map[string]float64 `json:"values"`

	IOSInstalls     float64 `json:"ios_installs"`
	AndroidInstalls float64 `json:"android_installs"`
	TotalInstalls   float64 `json:"total_installs"`
	IOSKYC          float64 `json:"ios_kyc"`
	AndroidKYC      float64 `json:"android_kyc"`
	TotalKYC        float64 `json:"total_kyc"`
	IOSOTP          float64 `json:"ios_otp"`
	AndroidOTP      float64 `json:"android_otp"`
	TotalOTP        float64 `json:"total_otp"`
	Spend           float64 `json:"spend"`

	InstallToKYCPct float64 `json:"install_to_kyc_pct"`
	InstallToOTPPct float64 `json:"install_to_otp_pct"`
	KYCToOTPPct     float64 `json:"kyc_to_otp_pct"`

	// nil on zero-install days so they stay out of CPI trends
	CostPerInstall *float64 `json:"cost_per_install"`
}

type Summary struct {
	TotalSpend        float64 `json:"total_spend"`
	TotalInstalls     float64 `json:"total_installs"`
	TotalKYC          float64 `json:"total_kyc"`
	TotalOTP          float64 `json:"total_otp"`
	AvgCostPerInstall float64 `json:"avg_cost_per_install"`
	InstallToKYCPct   float64 `json:"install_to_kyc_pct"`
	InstallToOTPPct   float64 `json:"install_to_otp_pct"`
	KYCToOTPPct       float64 `json:"kyc_to_otp_pct"`

	IOSInstalls     float64 `json:"ios_installs"`
	AndroidInstalls float64 `json:"android_installs"`
}

// Insight is a best-day pick. Date is "N/A" and Value nil when nothing qualifies.
type Insight struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type Insights struct {
	BestCPIDay         Insight `json:"best_cpi_day"`
	BestConversionDay  Insight `json:"best_conversion_day"`
	AvgInstallToKYCPct float64 `json:"avg_install_to_kyc_pct"`
	AvgInstallToOTPPct float64 `json:"avg_install_to_otp_pct"`
}

// Analysis is everything the dashboard needs for one upload of three files.
type Analysis struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Rows      []CombinedRow       `json:"rows"`
	Summary   Summary             `json:"summary"`
	Insights  Insights            `json:"insights"`
	Dropped   map[Source]int      `json:"dropped_rows"`
	Columns   map[Source][]string `json:"columns"`
	Warnings  []string            `json:"warnings,omitempty"`
}

type Point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type Series struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"` // bar | line | area
	Axis   string  `json:"axis,omitempty"`
	Points []Point `json:"points"`
}

type Chart struct {
	Title  string   `json:"title"`
	Stack  bool     `json:"stack,omitempty"`
	Series []Series `json:"series"`
}

type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Charts struct {
	SpendVsInstalls Chart   `json:"spend_vs_installs"`
	Funnel          Chart   `json:"funnel"`
	Conversion      Chart   `json:"conversion"`
	PlatformShare   []Slice `json:"platform_share"`
	PlatformDaily   Chart   `json:"platform_daily"`
	CostPerInstall  Chart   `json:"cost_per_install"`
}

// TableRow is one line of the detail table.
type TableRow struct {
	Date            string   `json:"date"`
	Spend           float64  `json:"spend"`
	Installs        float64  `json:"installs"`
	KYC             float64  `json:"kyc"`
	OTP             float64  `json:"otp"`
	CPI             *float64 `json:"cpi"`
	InstallToKYCPct float64  `json:"install_to_kyc_pct"`
	InstallToOTPPct float64  `json:"install_to_otp_pct"`
}
