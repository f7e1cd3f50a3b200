// Package tenancy resolves the owning tenant for incoming HTTP requests.
//
// Every request entering the API must be attributable to exactly one tenant
// before any other processing happens. The resolver extracts a tenant
// identifier from the request (explicit slug header, host subdomain, or
// legacy ID header, in that priority order), looks the tenant up through a
// Directory, and rejects requests whose tenant is missing, unknown, or
// deactivated. The middleware in this package runs ahead of rate limiting,
// authentication, and authorization so that all of those operate on
// tenant-scoped state.
package tenancy
