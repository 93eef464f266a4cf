package policy

// EarnLimitPolicy caps how many CivicCoins a user can earn, guarding the
// ledger against farming and runaway award loops.
type EarnLimitPolicy struct {
	SingleAwardMax int64 `json:"single_award_max"`
	DailyEarnMax   int64 `json:"daily_earn_max"`
}

// DefaultEarnLimits returns the default earning caps (500 per award, 2000 per day).
func DefaultEarnLimits() EarnLimitPolicy {
	return EarnLimitPolicy{
		SingleAwardMax: 500,
		DailyEarnMax:   2000,
	}
}

// EarnEvaluation holds the result of an earning limits check.
type EarnEvaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	LimitValue    int64  `json:"limit_value,omitempty"`
	RequestedAmt  int64  `json:"requested_amount,omitempty"`
}

// EvaluateEarnLimits checks an award amount against the earning caps.
// dailyEarned is the running positive total for the current day. Negative
// amounts (corrections, penalties) are never capped.
func EvaluateEarnLimits(policy EarnLimitPolicy, amount, dailyEarned int64) EarnEvaluation {
	if amount <= 0 {
		return EarnEvaluation{Allowed: true}
	}

	if policy.SingleAwardMax > 0 && amount > policy.SingleAwardMax {
		return EarnEvaluation{
			Allowed:       false,
			BreachedLimit: "single_award",
			LimitValue:    policy.SingleAwardMax,
			RequestedAmt:  amount,
		}
	}

	if policy.DailyEarnMax > 0 && dailyEarned+amount > policy.DailyEarnMax {
		return EarnEvaluation{
			Allowed:       false,
			BreachedLimit: "daily_earn",
			LimitValue:    policy.DailyEarnMax,
			RequestedAmt:  dailyEarned + amount,
		}
	}

	return EarnEvaluation{Allowed: true}
}
