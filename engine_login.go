package enroll

import (
	"context"

	"github.com/novextrustpay/enroll/forms"
)

// SignIn establishes a session from credentials. Local validation runs
// first; an identifier under 3 characters or a password under 8 never
// reaches the gateway. Gateway failures surface verbatim without retry.
func (e *Engine) SignIn(ctx context.Context, identifier, password string) (*SessionInfo, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrGatewayUnconfigured
	}

	v := forms.Violations{}
	if len(identifier) < 3 {
		v[forms.FieldUsername] = "enter username or email"
	}
	if len(password) < 8 {
		v[forms.FieldPassword] = "password must be at least 8 characters"
	}
	if len(v) > 0 {
		return nil, newValidationError(v)
	}

	session, err := e.gateway.SignInWithPassword(ctx, identifier, password)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, EventSignIn, false, identifier, "", err, nil)
		return nil, err
	}

	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, EventSignIn, true, identifier, session.UserID, nil, nil)
	return session, nil
}
