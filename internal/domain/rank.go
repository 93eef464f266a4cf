package domain

// Rank is the derived trainer tier computed from the CivicCoin balance.
type Rank string

const (
	RankNoviceTrainer     Rank = "Novice Trainer"
	RankIssueScout        Rank = "Issue Scout"
	RankCommunityGuardian Rank = "Community Guardian"
	RankDistrictChampion  Rank = "District Champion"
	RankElitePokeRanger   Rank = "Elite PokeRanger"
)

// RankThreshold pairs a rank with the minimum balance that earns it.
type RankThreshold struct {
	Rank     Rank
	MinCoins int64
}

// RankThresholds is the static rank table, strictly increasing by MinCoins.
var RankThresholds = []RankThreshold{
	{RankNoviceTrainer, 0},
	{RankIssueScout, 500},
	{RankCommunityGuardian, 1000},
	{RankDistrictChampion, 2500},
	{RankElitePokeRanger, 5000},
}

// RankFor returns the highest rank whose threshold is <= coins.
func RankFor(coins int64) Rank {
	rank := RankThresholds[0].Rank
	for _, t := range RankThresholds {
		if coins >= t.MinCoins {
			rank = t.Rank
		}
	}
	return rank
}

// ProgressToNext returns the percentage progress from the current rank
// toward the next one, clamped to [0,100]. The top rank always reports 100.
func ProgressToNext(coins int64) int {
	for i, t := range RankThresholds {
		if i == len(RankThresholds)-1 {
			return 100
		}
		next := RankThresholds[i+1]
		if coins >= next.MinCoins {
			continue
		}
		span := next.MinCoins - t.MinCoins
		pct := (coins - t.MinCoins) * 100 / span
		if pct < 0 {
			return 0
		}
		if pct > 100 {
			return 100
		}
		return int(pct)
	}
	return 100
}

// NextRank returns the rank above the current one, or "" at the top.
func NextRank(current Rank) Rank {
	for i, t := range RankThresholds {
		if t.Rank == current && i+1 < len(RankThresholds) {
			return RankThresholds[i+1].Rank
		}
	}
	return ""
}
