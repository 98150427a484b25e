package metrics

import "strings"

// Kind is the role a column plays in the funnel.
type Kind string

const (
	KindDate         Kind = "date"
	KindInstall      Kind = "install"
	KindKYC          Kind = "kyc"
	KindOTP          Kind = "otp"
	KindSpend        Kind = "spend"
	KindUnrecognized Kind = "unrecognized"
)

type Platform string

const (
	PlatformNone    Platform = ""
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Class is the outcome of classifying one column name.
type Class struct {
	Kind     Kind
	Platform Platform
}

// SpendColumn is the merged-table name of the adopted spend column.
const SpendColumn = "spend"

var (
	platforms     = []Platform{PlatformIOS, PlatformAndroid}
	funnelStages  = []Kind{KindInstall, KindKYC, KindOTP}
	// "spend" also covers "spends"
	spendKeywords = []string{"spend", "amount", "cost", "media"}
)

// Classify tags a column by name. A funnel column must start with a
// platform tag and contain the stage substring; "total_installs" and other
// unprefixed names never count toward a platform.
func Classify(column string) Class {
	lc := strings.ToLower(strings.TrimSpace(column))
	for _, p := range platforms {
		if !strings.HasPrefix(lc, string(p)) {
			continue
		}
		for _, k := range funnelStages {
			if strings.Contains(lc, string(k)) {
				return Class{Kind: k, Platform: p}
			}
		}
	}
	if strings.Contains(lc, "date") {
		return Class{Kind: KindDate}
	}
	if IsSpendName(lc) {
		return Class{Kind: KindSpend}
	}
	return Class{Kind: KindUnrecognized}
}

// IsSpendName reports whether column contains a spend keyword. Other words
// in the name, "date" included, do not matter.
func IsSpendName(column string) bool {
	lc := strings.ToLower(column)
	for _, kw := range spendKeywords {
		if strings.Contains(lc, kw) {
			return true
		}
	}
	return false
}

// FindSpendColumn returns the first column (skipping skip) whose name
// contains a spend keyword, or -1.
func FindSpendColumn(columns []string, skip int) int {
	for i, c := range columns {
		if i == skip {
			continue
		}
		if IsSpendName(c) {
			return i
		}
	}
	return -1
}
