package policy

import "github.com/civicdex/platform/internal/domain"

// ReasonRoutingPolicy defines which award reasons a caller may use. System
// reasons (quest rewards, rank bonuses) are credited by internal engines
// and must not be reachable from the public award endpoint.
type ReasonRoutingPolicy struct {
	AllowedReasons []domain.PointReason `json:"allowed_reasons,omitempty"` // empty = all allowed
	BlockedReasons []domain.PointReason `json:"blocked_reasons,omitempty"`
}

// ClientAwardPolicy returns the routing policy for client-facing awards.
func ClientAwardPolicy() ReasonRoutingPolicy {
	return ReasonRoutingPolicy{
		BlockedReasons: []domain.PointReason{
			domain.ReasonQuestCompletion,
			domain.ReasonBadgeEarned,
			domain.ReasonRankUp,
		},
	}
}

// ReasonRouteEvaluation holds the result of a routing check.
type ReasonRouteEvaluation struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// EvaluateReasonRoute checks whether the award reason is permitted.
func EvaluateReasonRoute(policy ReasonRoutingPolicy, reason domain.PointReason) ReasonRouteEvaluation {
	for _, blocked := range policy.BlockedReasons {
		if blocked == reason {
			return ReasonRouteEvaluation{Allowed: false, Reason: "reason reserved for internal engines: " + string(reason)}
		}
	}

	if len(policy.AllowedReasons) > 0 {
		found := false
		for _, allowed := range policy.AllowedReasons {
			if allowed == reason {
				found = true
				break
			}
		}
		if !found {
			return ReasonRouteEvaluation{Allowed: false, Reason: "reason not in allowed list: " + string(reason)}
		}
	}

	return ReasonRouteEvaluation{Allowed: true}
}
