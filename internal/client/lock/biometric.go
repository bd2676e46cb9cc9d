package lock

import "context"

// OutcomeKind distinguishes the three ways an identity challenge can end.
// Canceled is an expected flow, not an error: the controller stays silent
// when an automatic prompt is canceled and only shows feedback for
// user-triggered attempts.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeCanceled
	OutcomeFailure
)

// Outcome is the result of a biometric identity challenge.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // populated for OutcomeFailure
}

// Availability reports whether the platform can run a biometric challenge
// and which sensor kind it would use ("face", "fingerprint", ...).
type Availability struct {
	Available bool
	Kind      string
}

// Gateway is the platform biometric capability consumed by the controller.
// Implementations wrap whatever the device shell provides.
type Gateway interface {
	Availability(ctx context.Context) (Availability, error)
	VerifyIdentity(ctx context.Context) Outcome
}
