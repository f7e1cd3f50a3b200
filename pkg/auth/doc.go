// Package auth covers the identity half of the request pipeline: access
// token issuance and verification, password hashing, binding verified
// claims to a tenant-scoped user record, and role-based authorization.
//
// The central invariant is the token-tenant binding: a token carries the
// tenant it was minted for, and the binder refuses to construct a Principal
// when that tenant differs from the one the request resolved to. The check
// runs before any user lookup, and a failure is a security event, not an
// ordinary authentication error.
package auth
