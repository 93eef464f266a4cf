package achievement

import (
	"testing"

	"github.com/civicdex/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func catalogFixture() []domain.Achievement {
	return []domain.Achievement{
		{ID: uuid.New(), Name: "First Steps", RequiredCoins: 0},
		{ID: uuid.New(), Name: "Issue Scout", RequiredCoins: 500},
		{ID: uuid.New(), Name: "Community Guardian", RequiredCoins: 1000},
		{ID: uuid.New(), Name: "Elite PokeRanger", RequiredCoins: 5000},
	}
}

func TestEligible(t *testing.T) {
	catalog := catalogFixture()

	tests := []struct {
		name    string
		balance int64
		want    []string
	}{
		{"zero balance unlocks the free tier", 0, []string{"First Steps"}},
		{"just below scout", 499, []string{"First Steps"}},
		{"exactly scout", 500, []string{"First Steps", "Issue Scout"}},
		{"mid tier", 1200, []string{"First Steps", "Issue Scout", "Community Guardian"}},
		{"everything", 5000, []string{"First Steps", "Issue Scout", "Community Guardian", "Elite PokeRanger"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range Eligible(catalog, tt.balance) {
				got = append(got, a.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEligible_OrderPreserved(t *testing.T) {
	// The catalog arrives ascending by required_coins; eligibility must not
	// reorder it, since emitted unlock events follow this order.
	catalog := catalogFixture()
	eligible := Eligible(catalog, 10_000)
	for i := 1; i < len(eligible); i++ {
		assert.GreaterOrEqual(t, eligible[i].RequiredCoins, eligible[i-1].RequiredCoins)
	}
}

func TestEligible_EmptyCatalog(t *testing.T) {
	assert.Empty(t, Eligible(nil, 1000))
}
