package usecase

import "context"

// Decision is the gateway's verdict for a single request.
type Decision int

const (
	// DecisionDeny routes the request to the authentication surface.
	DecisionDeny Decision = iota

	// DecisionForward relays the request to the protected upstream.
	DecisionForward
)

// GatewayUsecase decides, per request, whether the gateway forwards to the
// upstream or withholds it behind the authentication surface.
type GatewayUsecase interface {
	// Decide inspects the request path and the presented session token.
	// Exempt paths forward unconditionally. Otherwise forwarding requires
	// a live session; a missing, unknown or expired token denies. A store
	// failure returns a non-nil error and the caller must fail closed,
	// never treat it as either verdict.
	Decide(ctx context.Context, path, token string) (Decision, error)
}
