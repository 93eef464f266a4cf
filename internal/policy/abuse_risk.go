package policy

// RiskLevel classifies account abuse risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AbuseSignals holds the raw inputs for abuse risk evaluation.
type AbuseSignals struct {
	AwardVelocity       int  `json:"award_velocity"`        // awards in last 5min
	RejectedReports     int  `json:"rejected_reports"`      // reports rejected in last week
	GeoAnomaly          bool `json:"geo_anomaly"`           // report location far from usual area
	MultipleAccounts    bool `json:"multiple_accounts"`     // device shared with other accounts
	SelfVerifyAttempted bool `json:"self_verify_attempted"` // tried to verify own report
}

// AbuseRiskResult holds the evaluated risk.
type AbuseRiskResult struct {
	Level RiskLevel `json:"level"`
	Score int       `json:"score"`
	Flags []string  `json:"flags,omitempty"`
}

// EvaluateAbuseRisk computes a risk score from account signals.
func EvaluateAbuseRisk(signals AbuseSignals) AbuseRiskResult {
	var score int
	var flags []string

	if signals.AwardVelocity > 30 {
		score += 30
		flags = append(flags, "high_velocity")
	} else if signals.AwardVelocity > 15 {
		score += 15
		flags = append(flags, "elevated_velocity")
	}

	if signals.RejectedReports > 5 {
		score += 40
		flags = append(flags, "rejected_reports")
	} else if signals.RejectedReports > 2 {
		score += 20
		flags = append(flags, "rejected_reports_moderate")
	}

	if signals.GeoAnomaly {
		score += 25
		flags = append(flags, "geo_anomaly")
	}

	if signals.MultipleAccounts {
		score += 20
		flags = append(flags, "multiple_accounts")
	}

	if signals.SelfVerifyAttempted {
		score += 25
		flags = append(flags, "self_verify")
	}

	level := RiskLow
	if score >= 60 {
		level = RiskHigh
	} else if score >= 30 {
		level = RiskMedium
	}

	return AbuseRiskResult{Level: level, Score: score, Flags: flags}
}
