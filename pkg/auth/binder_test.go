package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

type fakeUserFinder struct {
	users map[string]*User // keyed by userID + "/" + tenantID
	err   error
}

func (f *fakeUserFinder) FindUser(_ context.Context, userID, tenantID string) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[userID+"/"+tenantID], nil
}

func claimsFor(userID, tenantID string) *Claims {
	return &Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
	}
}

func acmeTenant() *tenancy.Tenant {
	return &tenancy.Tenant{ID: "t-acme", Slug: "acme", IsActive: true}
}

func newTestBinder(users *fakeUserFinder, out *bytes.Buffer) *Binder {
	if out == nil {
		out = &bytes.Buffer{}
	}
	logger := observability.NewLogger(observability.ErrorLevel, out)
	return NewBinder(users, logger, nil)
}

func TestBind_Success(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*User{
		"u-1/t-acme": testUser("u-1", "t-acme", RoleMember),
	}}
	binder := newTestBinder(finder, nil)

	principal, err := binder.Bind(context.Background(), claimsFor("u-1", "t-acme"), acmeTenant())
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.UserID)
	assert.Equal(t, "t-acme", principal.TenantID)
	assert.Equal(t, RoleMember, principal.Role)
}

func TestBind_RoleComesFromRecordNotToken(t *testing.T) {
	// The stored user was demoted to viewer; a token minted while they
	// were admin must not resurrect the old role.
	finder := &fakeUserFinder{users: map[string]*User{
		"u-1/t-acme": testUser("u-1", "t-acme", RoleViewer),
	}}
	binder := newTestBinder(finder, nil)

	principal, err := binder.Bind(context.Background(), claimsFor("u-1", "t-acme"), acmeTenant())
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, principal.Role)
}

func TestBind_NilClaims(t *testing.T) {
	binder := newTestBinder(&fakeUserFinder{}, nil)
	_, err := binder.Bind(context.Background(), nil, acmeTenant())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBind_MissingSubject(t *testing.T) {
	binder := newTestBinder(&fakeUserFinder{}, nil)
	_, err := binder.Bind(context.Background(), claimsFor("", "t-acme"), acmeTenant())
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestBind_IsolationViolation(t *testing.T) {
	// The user exists and is valid; the token is simply bound to another
	// tenant. The violation must fire before any user lookup.
	finder := &fakeUserFinder{err: errors.New("store must not be touched")}
	var out bytes.Buffer
	binder := newTestBinder(finder, &out)

	_, err := binder.Bind(context.Background(), claimsFor("u-1", "t-contoso"), acmeTenant())
	assert.ErrorIs(t, err, ErrIsolationViolation)

	// The violation is logged as a security event with full context.
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "tenant_isolation_violation", entry["security_event"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Equal(t, "t-contoso", entry["claimed_tenant"])
	assert.Equal(t, "t-acme", entry["resolved_tenant"])
}

func TestBind_UserNotFound(t *testing.T) {
	binder := newTestBinder(&fakeUserFinder{}, nil)
	_, err := binder.Bind(context.Background(), claimsFor("u-ghost", "t-acme"), acmeTenant())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBind_InactiveUser(t *testing.T) {
	inactive := testUser("u-1", "t-acme", RoleMember)
	inactive.IsActive = false
	finder := &fakeUserFinder{users: map[string]*User{"u-1/t-acme": inactive}}
	binder := newTestBinder(finder, nil)

	_, err := binder.Bind(context.Background(), claimsFor("u-1", "t-acme"), acmeTenant())
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestBind_StoreFaultIsNotABindingFailure(t *testing.T) {
	boom := errors.New("connection refused")
	binder := newTestBinder(&fakeUserFinder{err: boom}, nil)

	_, err := binder.Bind(context.Background(), claimsFor("u-1", "t-acme"), acmeTenant())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, isBindingFailure(err))
}

func TestBindOptional(t *testing.T) {
	finder := &fakeUserFinder{users: map[string]*User{
		"u-1/t-acme": testUser("u-1", "t-acme", RoleMember),
	}}
	binder := newTestBinder(finder, nil)

	t.Run("valid claims yield principal", func(t *testing.T) {
		principal, err := binder.BindOptional(context.Background(), claimsFor("u-1", "t-acme"), acmeTenant())
		require.NoError(t, err)
		require.NotNil(t, principal)
	})

	t.Run("nil claims yield no principal and no error", func(t *testing.T) {
		principal, err := binder.BindOptional(context.Background(), nil, acmeTenant())
		require.NoError(t, err)
		assert.Nil(t, principal)
	})

	t.Run("isolation violation yields no principal and no error", func(t *testing.T) {
		principal, err := binder.BindOptional(context.Background(), claimsFor("u-1", "t-contoso"), acmeTenant())
		require.NoError(t, err)
		assert.Nil(t, principal)
	})

	t.Run("store fault still surfaces", func(t *testing.T) {
		broken := newTestBinder(&fakeUserFinder{err: errors.New("down")}, nil)
		_, err := broken.BindOptional(context.Background(), claimsFor("u-1", "t-acme"), acmeTenant())
		assert.Error(t, err)
	})
}
