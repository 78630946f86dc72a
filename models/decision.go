package models

// DecisionOutcome represents the three possible results of a guard
// evaluation
type DecisionOutcome string

const (
	DecisionAllow   DecisionOutcome = "allow"
	DecisionDeny    DecisionOutcome = "deny"
	DecisionPending DecisionOutcome = "pending"
)

// AccessDecision is the evaluator's output for one route evaluation.
// A guard commits to exactly one decision per evaluation; RedirectTarget
// is set only for deny outcomes.
type AccessDecision struct {
	Outcome        DecisionOutcome `json:"outcome"`
	RedirectTarget string          `json:"redirect_target,omitempty"`
}

// Allow grants access to the protected view
func Allow() AccessDecision {
	return AccessDecision{Outcome: DecisionAllow}
}

// DenyRedirect denies access and names where the caller should be sent
func DenyRedirect(target string) AccessDecision {
	return AccessDecision{Outcome: DecisionDeny, RedirectTarget: target}
}

// Pending signals the session has not settled yet; callers render a
// loading placeholder, never the protected view
func Pending() AccessDecision {
	return AccessDecision{Outcome: DecisionPending}
}

// Allowed returns true for allow outcomes
func (d AccessDecision) Allowed() bool {
	return d.Outcome == DecisionAllow
}
