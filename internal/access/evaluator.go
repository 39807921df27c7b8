package access

// Reason explains an access decision.
type Reason string

// Decision reasons.
const (
	ReasonOK              Reason = "ok"
	ReasonRoleDenied      Reason = "role-denied"
	ReasonModuleDenied    Reason = "module-denied"
	ReasonUnauthenticated Reason = "unauthenticated"
)

// Decision is the outcome of evaluating a session against a route.
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason Reason `json:"reason"`
}

var (
	decisionOK              = Decision{Allow: true, Reason: ReasonOK}
	decisionRoleDenied      = Decision{Reason: ReasonRoleDenied}
	decisionModuleDenied    = Decision{Reason: ReasonModuleDenied}
	decisionUnauthenticated = Decision{Reason: ReasonUnauthenticated}
)

// Evaluate decides whether session may open route. It has no side effects.
//
// An empty allowed-role set denies every role. Public routes are expressed by
// skipping the guard, never by an empty set.
func Evaluate(session Session, route Route) Decision {
	if !session.Authenticated {
		return decisionUnauthenticated
	}
	if !route.allowed.Has(session.Role) {
		return decisionRoleDenied
	}
	if route.module != "" && !ModuleGrants(session.Role).Has(route.module) {
		return decisionModuleDenied
	}
	return decisionOK
}
