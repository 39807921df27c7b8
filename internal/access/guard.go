package access

// GuardState is the terminal state a guard settles on for one navigation.
type GuardState int

// Guard states. Every navigation starts Pending and settles before rendering.
const (
	GuardPending GuardState = iota
	GuardAuthorized
	GuardDenied
	GuardUnauthenticated
)

func (s GuardState) String() string {
	switch s {
	case GuardAuthorized:
		return "authorized"
	case GuardDenied:
		return "denied"
	case GuardUnauthenticated:
		return "unauthenticated"
	default:
		return "pending"
	}
}

// Outcome couples the settled guard state with the underlying decision.
type Outcome struct {
	State    GuardState
	Decision Decision
	Route    Route
}

// Guard settles navigations against the evaluator.
type Guard struct{}

// Check evaluates session against route. Public routes always authorize.
func (Guard) Check(session Session, route Route) Outcome {
	out := Outcome{State: GuardPending, Route: route}
	if route.public {
		out.State = GuardAuthorized
		out.Decision = decisionOK
		return out
	}
	out.Decision = Evaluate(session, route)
	switch {
	case out.Decision.Allow:
		out.State = GuardAuthorized
	case out.Decision.Reason == ReasonUnauthenticated:
		out.State = GuardUnauthenticated
	default:
		out.State = GuardDenied
	}
	return out
}
