// Package middleware holds the HTTP stages of the request pipeline that
// run between tenant resolution and the handlers: per-tenant admission
// control, bearer token authentication, role gating, and request ID
// assignment.
//
// Stage order matters and is fixed: resolve tenant, admit under the
// tenant's rate budget, bind identity, authorize. Each stage fails closed
// on its own error; the rate limiter alone may degrade to fail-open when
// its counter store is unreachable.
package middleware
