package enroll

import "context"

// GateDecision is the outcome of guarding an account-holder view. When
// Allowed is false the view must not render; control passes to
// Destination (always the login screen for an absent session).
type GateDecision struct {
	Allowed     bool
	Destination Destination
	Session     *SessionInfo
}

// Authorize guards entry to an account-holder view. An absent session,
// or a gateway that cannot answer, yields a redirect decision before any
// guarded content is exposed; a present session yields the profile fields
// the view renders.
func (e *Engine) Authorize(ctx context.Context) GateDecision {
	redirect := GateDecision{Allowed: false, Destination: DestinationLogin}
	if e == nil || e.gateway == nil {
		return redirect
	}

	session, err := e.gateway.CurrentSession(ctx)
	if err != nil || session == nil {
		e.metricInc(MetricGateRedirected)
		e.emitAudit(ctx, EventSessionGate, false, "", "", err, nil)
		return redirect
	}

	e.metricInc(MetricGateAllowed)
	return GateDecision{
		Allowed:     true,
		Destination: DestinationDashboard,
		Session:     session,
	}
}

// SignOut clears the session best-effort and always hands control to the
// login screen: the local session view disappears even when the remote
// call fails. The failure is recorded on the audit trail only.
func (e *Engine) SignOut(ctx context.Context) Destination {
	if e == nil || e.gateway == nil {
		return DestinationLogin
	}

	err := e.gateway.SignOut(ctx)
	e.metricInc(MetricSignOut)
	e.emitAudit(ctx, EventSignOut, err == nil, "", "", err, nil)

	return DestinationLogin
}
