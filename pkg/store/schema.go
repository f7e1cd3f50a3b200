package store

// Schema creates the record store tables. The DDL sticks to types both
// PostgreSQL and SQLite understand so tests can run against an in-memory
// database. IDs are generated in the application, not by the database.
const Schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	slug                  TEXT NOT NULL UNIQUE,
	subdomain             TEXT NOT NULL UNIQUE,
	is_active             BOOLEAN NOT NULL DEFAULT TRUE,
	subscription_tier     TEXT NOT NULL DEFAULT 'free',
	rate_limit_per_minute INTEGER,
	rate_limit_burst      INTEGER,
	admin_email           TEXT NOT NULL,
	billing_email         TEXT,
	created_at            TIMESTAMP NOT NULL,
	updated_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	tenant_id       TEXT NOT NULL REFERENCES tenants(id),
	email           TEXT NOT NULL,
	full_name       TEXT NOT NULL DEFAULT '',
	hashed_password TEXT NOT NULL,
	role            TEXT NOT NULL DEFAULT 'viewer',
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL,
	UNIQUE (tenant_id, email)
);

CREATE INDEX IF NOT EXISTS idx_users_tenant ON users(tenant_id);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	tenant_id   TEXT NOT NULL REFERENCES tenants(id),
	owner_id    TEXT NOT NULL REFERENCES users(id),
	name        TEXT NOT NULL,
	description TEXT,
	status      TEXT NOT NULL DEFAULT 'active',
	is_public   BOOLEAN NOT NULL DEFAULT FALSE,
	view_count  INTEGER NOT NULL DEFAULT 0,
	is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
	deleted_at  TIMESTAMP,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_tenant ON projects(tenant_id, is_deleted);

CREATE TABLE IF NOT EXISTS resources (
	id            TEXT PRIMARY KEY,
	tenant_id     TEXT NOT NULL REFERENCES tenants(id),
	project_id    TEXT NOT NULL REFERENCES projects(id),
	name          TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	content       TEXT,
	file_url      TEXT,
	file_size     INTEGER,
	mime_type     TEXT,
	version       INTEGER NOT NULL DEFAULT 1,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resources_tenant ON resources(tenant_id, project_id);
`
