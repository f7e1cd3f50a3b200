package auth

import "time"

// Role is the privilege level of a user within their tenant. Roles form a
// total order: Viewer < Member < Admin.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var roleLevels = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
}

// Level returns the numeric rank of the role; unknown roles rank 0, below
// every real role.
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of required.
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= required.Level()
}

// ParseRole converts a stored role string to a Role, rejecting unknown
// values.
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	return role, role.Valid()
}

// User is a member of exactly one tenant. Email is unique within the tenant,
// not globally; the same address may exist under different tenants.
type User struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`

	// HashedPassword never leaves the server.
	HashedPassword string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated actor for one request: user, tenant, and
// role, bound together after the token-tenant check passed. It is
// request-scoped and never persisted.
type Principal struct {
	UserID   string
	TenantID string
	Email    string
	Role     Role
}

// NewPrincipal builds a Principal from a verified user record. The role
// comes from the record, not the token, so demotions take effect on the
// next request rather than at token expiry.
func NewPrincipal(user *User) *Principal {
	return &Principal{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Role:     user.Role,
	}
}
