// Package api is the HTTP surface: route registration, the assembled
// middleware pipeline, and the handlers for auth, users, projects, and
// resources. Handlers trust the pipeline for tenant and principal context
// and apply only the resource-specific ownership rules themselves.
package api
