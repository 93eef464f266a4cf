package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFor(t *testing.T) {
	tests := []struct {
		name  string
		coins int64
		want  Rank
	}{
		{"zero coins", 0, RankNoviceTrainer},
		{"just below scout", 499, RankNoviceTrainer},
		{"exactly scout", 500, RankIssueScout},
		{"between scout and guardian", 999, RankIssueScout},
		{"exactly guardian", 1000, RankCommunityGuardian},
		{"exactly champion", 2500, RankDistrictChampion},
		{"exactly elite", 5000, RankElitePokeRanger},
		{"far past elite", 1_000_000, RankElitePokeRanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankFor(tt.coins))
		})
	}
}

func TestRankFor_Monotonic(t *testing.T) {
	// Rank index must never decrease as coins increase.
	idx := func(r Rank) int {
		for i, t := range RankThresholds {
			if t.Rank == r {
				return i
			}
		}
		return -1
	}

	prev := -1
	for coins := int64(0); coins <= 6000; coins += 25 {
		cur := idx(RankFor(coins))
		require.GreaterOrEqual(t, cur, prev, "rank regressed at %d coins", coins)
		prev = cur
	}
}

func TestRankThresholds_StrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(RankThresholds); i++ {
		assert.Greater(t, RankThresholds[i].MinCoins, RankThresholds[i-1].MinCoins)
	}
}

func TestProgressToNext(t *testing.T) {
	tests := []struct {
		name  string
		coins int64
		want  int
	}{
		{"zero coins", 0, 0},
		{"halfway to scout", 250, 50},
		{"at scout", 500, 0},
		{"halfway to guardian", 750, 50},
		{"just below guardian", 999, 99},
		{"at champion", 2500, 0},
		{"at elite", 5000, 100},
		{"past elite", 99_999, 100},
		{"negative regression clamps", -50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressToNext(tt.coins))
		})
	}
}

func TestProgressToNext_Bounds(t *testing.T) {
	for coins := int64(-100); coins <= 6000; coins += 17 {
		pct := ProgressToNext(coins)
		require.GreaterOrEqual(t, pct, 0)
		require.LessOrEqual(t, pct, 100)
		if pct == 100 {
			assert.Equal(t, RankElitePokeRanger, RankFor(coins))
		}
	}
}

func TestNextRank(t *testing.T) {
	assert.Equal(t, RankIssueScout, NextRank(RankNoviceTrainer))
	assert.Equal(t, RankElitePokeRanger, NextRank(RankDistrictChampion))
	assert.Equal(t, Rank(""), NextRank(RankElitePokeRanger))
}
