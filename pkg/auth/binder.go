package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// Binding failure modes. All authentication failures map to 401 with a
// generic message; isolation violations map to 403 and are logged as
// security events.
var (
	// ErrInvalidToken covers missing, malformed, badly signed, and expired
	// tokens. The client cannot distinguish which.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrInvalidPayload means the token verified but lacks a subject.
	ErrInvalidPayload = errors.New("invalid token payload")

	// ErrIsolationViolation means the token was minted for a different
	// tenant than the one the request resolved to.
	ErrIsolationViolation = errors.New("access denied")

	// ErrUserNotFound means no active lookup path produced the user. The
	// message stays generic to avoid user enumeration.
	ErrUserNotFound = errors.New("authentication failed")

	// ErrUserInactive means the user record exists but is deactivated.
	ErrUserInactive = errors.New("authentication failed")
)

// UserFinder loads users from the record store. Lookups are always by the
// (user id, tenant id) compound key so a user id from one tenant can never
// surface another tenant's record. A miss is (nil, nil); a non-nil error
// is an infrastructure fault.
type UserFinder interface {
	FindUser(ctx context.Context, userID, tenantID string) (*User, error)
}

// Binder turns verified token claims plus a resolved tenant into an
// authenticated Principal, enforcing the token-tenant binding invariant.
type Binder struct {
	users   UserFinder
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewBinder creates an identity binder. Metrics may be nil.
func NewBinder(users UserFinder, logger *observability.Logger, metrics *observability.Metrics) *Binder {
	return &Binder{users: users, logger: logger, metrics: metrics}
}

// Bind validates claims against the resolved tenant and loads the user.
// Checks run in a fixed order; the tenant binding check runs strictly
// before any user lookup so a cross-tenant token never touches the store.
func (b *Binder) Bind(ctx context.Context, claims *Claims, tenant *tenancy.Tenant) (*Principal, error) {
	if claims == nil {
		b.countFailure("invalid_token")
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		b.countFailure("invalid_payload")
		return nil, ErrInvalidPayload
	}

	if claims.TenantID != tenant.ID {
		b.recordIsolationViolation(ctx, claims, tenant)
		return nil, ErrIsolationViolation
	}

	user, err := b.users.FindUser(ctx, claims.Subject, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if user == nil {
		b.countFailure("user_not_found")
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		b.countFailure("user_inactive")
		return nil, ErrUserInactive
	}

	return NewPrincipal(user), nil
}

// BindOptional is Bind for endpoints that tolerate anonymous access: any
// binding failure yields no principal instead of an error. Infrastructure
// faults still surface.
func (b *Binder) BindOptional(ctx context.Context, claims *Claims, tenant *tenancy.Tenant) (*Principal, error) {
	principal, err := b.Bind(ctx, claims, tenant)
	if err != nil {
		if isBindingFailure(err) {
			return nil, nil
		}
		return nil, err
	}
	return principal, nil
}

func isBindingFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrIsolationViolation) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUserInactive)
}

// recordIsolationViolation logs the mismatch with full context at security
// severity. The client response stays generic; the detail is for alerting.
func (b *Binder) recordIsolationViolation(ctx context.Context, claims *Claims, tenant *tenancy.Tenant) {
	b.logger.FromContext(ctx).SecurityEvent("tenant_isolation_violation", map[string]interface{}{
		"user_id":         claims.Subject,
		"claimed_tenant":  claims.TenantID,
		"resolved_tenant": tenant.ID,
	})
	if b.metrics != nil {
		b.metrics.IsolationViolationsTotal.Inc()
	}
	b.countFailure("isolation_violation")
}

func (b *Binder) countFailure(reason string) {
	if b.metrics != nil {
		b.metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	}
}
