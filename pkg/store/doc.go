// Package store is the persistent record store for tenants, users,
// projects, and resources.
//
// All lookups are tenant-scoped by construction: every query carries the
// tenant ID in its WHERE clause, so a leaked record ID from one tenant
// resolves to nothing when presented under another. The SQL implementation
// targets PostgreSQL in production and runs unchanged against in-memory
// SQLite in tests.
package store
