package authz

import (
	"context"

	"github.com/Skotchmaster/emotion_diary/pkg/logging"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

type Observer interface {
	Observe(ctx context.Context, claims tokens.ClaimSet, required roles.Role, res Result)
}

// LogObserver writes every decision to the request logger and hands it to
// Record, which is usually a metrics counter.
type LogObserver struct {
	Record func(decision, reason string)
}

func (o LogObserver) Observe(ctx context.Context, claims tokens.ClaimSet, required roles.Role, res Result) {
	if o.Record != nil {
		o.Record(res.Decision.String(), string(res.Reason))
	}

	sub, _ := claims.Subject()
	l := logging.FromContext(ctx).With("svc", "authz", "subject", sub, "required_role", string(required))

	switch res.Reason {
	case ReasonStoreUnavailable:
		l.Error("authz_denied", "reason", string(res.Reason), "error", res.Err)
	case ReasonUnauthenticated, ReasonInsufficientRole:
		l.Warn("authz_denied", "reason", string(res.Reason), "error", res.Err)
	default:
		l.Debug("authz_allowed", "reason", string(res.Reason))
	}
}
