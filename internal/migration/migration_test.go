package migration

import (
	"testing"

	"github.com/civicdex/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDeterministicUUID_Consistency(t *testing.T) {
	id1 := DeterministicUUID("user", "legacy-user-123")
	id2 := DeterministicUUID("user", "legacy-user-123")
	assert.Equal(t, id1, id2)
}

func TestDeterministicUUID_DifferentInputs(t *testing.T) {
	id1 := DeterministicUUID("user", "legacy-user-123")
	id2 := DeterministicUUID("user", "legacy-user-456")
	assert.NotEqual(t, id1, id2)
}

func TestDeterministicUUID_DifferentNamespaces(t *testing.T) {
	id1 := DeterministicUUID("user", "123")
	id2 := DeterministicUUID("transaction", "123")
	assert.NotEqual(t, id1, id2)
}

func TestDeterministicUUID_ValidVersion(t *testing.T) {
	id := DeterministicUUID("user", "test-id")
	version := id[6] >> 4
	assert.Equal(t, byte(5), version)
}

func TestDeterministicUUID_ValidVariant(t *testing.T) {
	id := DeterministicUUID("user", "test-id")
	variant := id[8] >> 6
	assert.Equal(t, byte(2), variant)
}

func TestSHA256Hex(t *testing.T) {
	hex := SHA256Hex("user", "test-123")
	assert.Len(t, hex, 64)
	assert.Equal(t, hex, SHA256Hex("user", "test-123"))
}

func TestMapReason(t *testing.T) {
	tests := []struct {
		legacy string
		want   domain.PointReason
	}{
		{"report", domain.ReasonIssueReport},
		{"issue_report", domain.ReasonIssueReport},
		{"verify", domain.ReasonIssueVerification},
		{"quest", domain.ReasonQuestCompletion},
		{"badge_earned", domain.ReasonBadgeEarned},
		{"something_unknown", domain.ReasonOther},
		{"", domain.ReasonOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapReason(tt.legacy), "legacy reason %q", tt.legacy)
	}
}
