package policy

import (
	"testing"

	"github.com/civicdex/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateEarnLimits(t *testing.T) {
	policy := DefaultEarnLimits()

	tests := []struct {
		name        string
		amount      int64
		dailyEarned int64
		wantAllowed bool
		wantBreach  string
	}{
		{"normal award", 50, 0, true, ""},
		{"at single cap", 500, 0, true, ""},
		{"over single cap", 501, 0, false, "single_award"},
		{"fills daily cap", 100, 1900, true, ""},
		{"over daily cap", 101, 1900, false, "daily_earn"},
		{"negative never capped", -5000, 2000, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateEarnLimits(policy, tt.amount, tt.dailyEarned)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantBreach, got.BreachedLimit)
		})
	}
}

func TestEvaluateEarnLimits_ZeroPolicyDisablesCaps(t *testing.T) {
	got := EvaluateEarnLimits(EarnLimitPolicy{}, 1_000_000, 1_000_000)
	assert.True(t, got.Allowed)
}

func TestEvaluateReasonRoute_BlocksInternalReasons(t *testing.T) {
	policy := ClientAwardPolicy()

	for _, reason := range []domain.PointReason{
		domain.ReasonQuestCompletion,
		domain.ReasonBadgeEarned,
		domain.ReasonRankUp,
	} {
		got := EvaluateReasonRoute(policy, reason)
		assert.False(t, got.Allowed, "reason %s", reason)
	}

	assert.True(t, EvaluateReasonRoute(policy, domain.ReasonIssueReport).Allowed)
	assert.True(t, EvaluateReasonRoute(policy, domain.ReasonIssueVerification).Allowed)
}

func TestEvaluateReasonRoute_Allowlist(t *testing.T) {
	policy := ReasonRoutingPolicy{AllowedReasons: []domain.PointReason{domain.ReasonIssueReport}}

	assert.True(t, EvaluateReasonRoute(policy, domain.ReasonIssueReport).Allowed)
	assert.False(t, EvaluateReasonRoute(policy, domain.ReasonOther).Allowed)
}

func TestEvaluateAbuseRisk(t *testing.T) {
	tests := []struct {
		name      string
		signals   AbuseSignals
		wantLevel RiskLevel
	}{
		{"clean account", AbuseSignals{}, RiskLow},
		{"elevated velocity only", AbuseSignals{AwardVelocity: 20}, RiskLow},
		{"velocity plus geo", AbuseSignals{AwardVelocity: 40, GeoAnomaly: true}, RiskMedium},
		{"farming pattern", AbuseSignals{AwardVelocity: 40, RejectedReports: 6, SelfVerifyAttempted: true}, RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateAbuseRisk(tt.signals)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}
