package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// ErrDuplicate is returned on unique constraint violations (tenant slug or
// subdomain, user email within a tenant).
var ErrDuplicate = errors.New("record already exists")

// SQLStore implements Store on database/sql. Production runs it against
// PostgreSQL; tests run the same code against in-memory SQLite, so queries
// stick to the common subset of both dialects.
type SQLStore struct {
	db           *sql.DB
	queryTimeout time.Duration
	metrics      *observability.Metrics
}

// NewSQLStore wraps an open database handle. Metrics may be nil. A zero
// queryTimeout disables per-query deadlines.
func NewSQLStore(db *sql.DB, queryTimeout time.Duration, metrics *observability.Metrics) *SQLStore {
	return &SQLStore{db: db, queryTimeout: queryTimeout, metrics: metrics}
}

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// observe records operation metrics. Called via defer with the named error.
func (s *SQLStore) observe(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// --- tenants ---

const tenantColumns = `id, name, slug, subdomain, is_active, subscription_tier,
	rate_limit_per_minute, rate_limit_burst, admin_email, billing_email,
	created_at, updated_at`

func (s *SQLStore) CreateTenant(ctx context.Context, tenant *tenancy.Tenant) (err error) {
	start := time.Now()
	defer func() { s.observe("create_tenant", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	if tenant.SubscriptionTier == "" {
		tenant.SubscriptionTier = tenancy.TierFree
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tenant.ID, tenant.Name, tenant.Slug, tenant.Subdomain, tenant.IsActive,
		string(tenant.SubscriptionTier), nullInt(tenant.RateLimitPerMinute),
		nullInt(tenant.RateLimitBurst), tenant.AdminEmail,
		nullString(tenant.BillingEmail), tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) UpdateTenant(ctx context.Context, tenant *tenancy.Tenant) (err error) {
	start := time.Now()
	defer func() { s.observe("update_tenant", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tenant.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE tenants
		SET name = $1, is_active = $2, subscription_tier = $3,
		    rate_limit_per_minute = $4, rate_limit_burst = $5,
		    admin_email = $6, billing_email = $7, updated_at = $8
		WHERE id = $9`,
		tenant.Name, tenant.IsActive, string(tenant.SubscriptionTier),
		nullInt(tenant.RateLimitPerMinute), nullInt(tenant.RateLimitBurst),
		tenant.AdminEmail, nullString(tenant.BillingEmail), tenant.UpdatedAt,
		tenant.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return nil
}

func (s *SQLStore) FindTenantBySlug(ctx context.Context, slug string) (*tenancy.Tenant, error) {
	return s.findTenant(ctx, "find_tenant_by_slug", "slug = $1", slug)
}

func (s *SQLStore) FindTenantBySubdomain(ctx context.Context, subdomain string) (*tenancy.Tenant, error) {
	return s.findTenant(ctx, "find_tenant_by_subdomain", "subdomain = $1", subdomain)
}

func (s *SQLStore) FindTenantByID(ctx context.Context, id string) (*tenancy.Tenant, error) {
	return s.findTenant(ctx, "find_tenant_by_id", "id = $1", id)
}

func (s *SQLStore) findTenant(ctx context.Context, operation, where string, arg interface{}) (tenant *tenancy.Tenant, err error) {
	start := time.Now()
	defer func() { s.observe(operation, start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE `+where, arg)

	var t tenancy.Tenant
	var tier string
	var ratePerMinute, burst sql.NullInt64
	var billingEmail sql.NullString
	err = row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Subdomain, &t.IsActive, &tier,
		&ratePerMinute, &burst, &t.AdminEmail, &billingEmail,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}

	t.SubscriptionTier = tenancy.SubscriptionTier(tier)
	t.RateLimitPerMinute = intPtr(ratePerMinute)
	t.RateLimitBurst = intPtr(burst)
	t.BillingEmail = stringPtr(billingEmail)
	return &t, nil
}

// --- users ---

const userColumns = `id, tenant_id, email, full_name, hashed_password, role,
	is_active, created_at, updated_at`

func (s *SQLStore) CreateUser(ctx context.Context, user *auth.User) (err error) {
	start := time.Now()
	defer func() { s.observe("create_user", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.TenantID, user.Email, user.FullName, user.HashedPassword,
		string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, user *auth.User) (err error) {
	start := time.Now()
	defer func() { s.observe("update_user", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $1, full_name = $2, hashed_password = $3, role = $4,
		    is_active = $5, updated_at = $6
		WHERE id = $7 AND tenant_id = $8`,
		user.Email, user.FullName, user.HashedPassword, string(user.Role),
		user.IsActive, user.UpdatedAt, user.ID, user.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translateConstraint(err))
	}
	return nil
}

func (s *SQLStore) FindUser(ctx context.Context, userID, tenantID string) (*auth.User, error) {
	return s.findUser(ctx, "find_user", "id = $1 AND tenant_id = $2", userID, tenantID)
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, tenantID, email string) (*auth.User, error) {
	return s.findUser(ctx, "find_user_by_email", "tenant_id = $1 AND email = $2", tenantID, email)
}

func (s *SQLStore) findUser(ctx context.Context, operation, where string, args ...interface{}) (user *auth.User, err error) {
	start := time.Now()
	defer func() { s.observe(operation, start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...)

	var u auth.User
	var role string
	err = row.Scan(
		&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.HashedPassword,
		&role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context, tenantID string, filter UserFilter, limit, offset int) (users []*auth.User, err error) {
	start := time.Now()
	defer func() { s.observe("list_users", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := userWhere(tenantID, filter)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		`+where+`
		ORDER BY created_at, id
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users = make([]*auth.User, 0)
	for rows.Next() {
		var u auth.User
		var role string
		if err = rows.Scan(
			&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.HashedPassword,
			&role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = auth.Role(role)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (s *SQLStore) CountUsers(ctx context.Context, tenantID string, filter UserFilter) (count int, err error) {
	start := time.Now()
	defer func() { s.observe("count_users", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := userWhere(tenantID, filter)
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users `+where, args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func userWhere(tenantID string, filter UserFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += " AND role = $" + strconv.Itoa(len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where += " AND is_active = $" + strconv.Itoa(len(args))
	}
	return where, args
}

// --- projects ---

const projectColumns = `id, tenant_id, owner_id, name, description, status,
	is_public, view_count, is_deleted, deleted_at, created_at, updated_at`

func (s *SQLStore) CreateProject(ctx context.Context, project *Project) (err error) {
	start := time.Now()
	defer func() { s.observe("create_project", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Status == "" {
		project.Status = ProjectActive
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		project.ID, project.TenantID, project.OwnerID, project.Name,
		nullString(project.Description), string(project.Status),
		project.IsPublic, project.ViewCount, project.IsDeleted,
		nullTime(project.DeletedAt), project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *SQLStore) FindProject(ctx context.Context, projectID, tenantID string) (project *Project, err error) {
	start := time.Now()
	defer func() { s.observe("find_project", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE id = $1 AND tenant_id = $2 AND is_deleted = FALSE`,
		projectID, tenantID,
	)
	project, err = scanProject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return project, nil
}

func (s *SQLStore) ListProjects(ctx context.Context, tenantID string, filter ProjectFilter, limit, offset int) (projects []*Project, err error) {
	start := time.Now()
	defer func() { s.observe("list_projects", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := projectWhere(tenantID, filter)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		`+where+`
		ORDER BY created_at, id
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects = make([]*Project, 0)
	for rows.Next() {
		project, scanErr := scanProject(rows.Scan)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan project: %w", scanErr)
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (s *SQLStore) CountProjects(ctx context.Context, tenantID string, filter ProjectFilter) (count int, err error) {
	start := time.Now()
	defer func() { s.observe("count_projects", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := projectWhere(tenantID, filter)
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects `+where, args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func projectWhere(tenantID string, filter ProjectFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1 AND is_deleted = FALSE"
	args := []interface{}{tenantID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where += " AND owner_id = $" + strconv.Itoa(len(args))
	}
	return where, args
}

// TouchProjectView bumps the project's view counter. Read paths call this
// best-effort; a failure never blocks the read itself.
func (s *SQLStore) TouchProjectView(ctx context.Context, projectID, tenantID string) (err error) {
	start := time.Now()
	defer func() { s.observe("touch_project_view", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		UPDATE projects SET view_count = view_count + 1
		WHERE id = $1 AND tenant_id = $2 AND is_deleted = FALSE`,
		projectID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch project view: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateProject(ctx context.Context, project *Project) (err error) {
	start := time.Now()
	defer func() { s.observe("update_project", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	project.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = $1, description = $2, status = $3, is_public = $4, updated_at = $5
		WHERE id = $6 AND tenant_id = $7 AND is_deleted = FALSE`,
		project.Name, nullString(project.Description), string(project.Status),
		project.IsPublic, project.UpdatedAt, project.ID, project.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// DeleteProject soft-deletes; the row stays for audit but vanishes from
// all read paths.
func (s *SQLStore) DeleteProject(ctx context.Context, projectID, tenantID string) (err error) {
	start := time.Now()
	defer func() { s.observe("delete_project", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE projects
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4`,
		now, now, projectID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func scanProject(scan func(...interface{}) error) (*Project, error) {
	var p Project
	var description sql.NullString
	var status string
	var deletedAt sql.NullTime
	err := scan(
		&p.ID, &p.TenantID, &p.OwnerID, &p.Name, &description, &status,
		&p.IsPublic, &p.ViewCount, &p.IsDeleted, &deletedAt, &p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Description = stringPtr(description)
	p.Status = ProjectStatus(status)
	p.DeletedAt = timePtr(deletedAt)
	return &p, nil
}

// --- resources ---

const resourceColumns = `id, tenant_id, project_id, name, resource_type,
	content, file_url, file_size, mime_type, version, created_at, updated_at`

func (s *SQLStore) CreateResource(ctx context.Context, resource *Resource) (err error) {
	start := time.Now()
	defer func() { s.observe("create_resource", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	if resource.Version == 0 {
		resource.Version = 1
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resources (`+resourceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		resource.ID, resource.TenantID, resource.ProjectID, resource.Name,
		string(resource.ResourceType), nullString(resource.Content),
		nullString(resource.FileURL), nullInt64(resource.FileSize),
		nullString(resource.MimeType), resource.Version,
		resource.CreatedAt, resource.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (s *SQLStore) FindResource(ctx context.Context, resourceID, tenantID string) (resource *Resource, err error) {
	start := time.Now()
	defer func() { s.observe("find_resource", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+resourceColumns+` FROM resources
		WHERE id = $1 AND tenant_id = $2`,
		resourceID, tenantID,
	)
	resource, err = scanResource(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}
	return resource, nil
}

func (s *SQLStore) ListResources(ctx context.Context, tenantID, projectID string, limit, offset int) (resources []*Resource, err error) {
	start := time.Now()
	defer func() { s.observe("list_resources", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+resourceColumns+` FROM resources
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`,
		tenantID, projectID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources = make([]*Resource, 0)
	for rows.Next() {
		resource, scanErr := scanResource(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", scanErr)
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

func (s *SQLStore) CountResources(ctx context.Context, tenantID, projectID string) (count int, err error) {
	start := time.Now()
	defer func() { s.observe("count_resources", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE tenant_id = $1 AND project_id = $2`,
		tenantID, projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

func (s *SQLStore) UpdateResource(ctx context.Context, resource *Resource) (err error) {
	start := time.Now()
	defer func() { s.observe("update_resource", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resource.UpdatedAt = time.Now().UTC()
	resource.Version++
	_, err = s.db.ExecContext(ctx, `
		UPDATE resources
		SET name = $1, content = $2, file_url = $3, file_size = $4,
		    mime_type = $5, version = $6, updated_at = $7
		WHERE id = $8 AND tenant_id = $9`,
		resource.Name, nullString(resource.Content), nullString(resource.FileURL),
		nullInt64(resource.FileSize), nullString(resource.MimeType),
		resource.Version, resource.UpdatedAt, resource.ID, resource.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteResource(ctx context.Context, resourceID, tenantID string) (err error) {
	start := time.Now()
	defer func() { s.observe("delete_resource", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM resources WHERE id = $1 AND tenant_id = $2`,
		resourceID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return nil
}

func scanResource(scan func(...interface{}) error) (*Resource, error) {
	var r Resource
	var resourceType string
	var content, fileURL, mimeType sql.NullString
	var fileSize sql.NullInt64
	err := scan(
		&r.ID, &r.TenantID, &r.ProjectID, &r.Name, &resourceType,
		&content, &fileURL, &fileSize, &mimeType, &r.Version,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ResourceType = ResourceType(resourceType)
	r.Content = stringPtr(content)
	r.FileURL = stringPtr(fileURL)
	r.MimeType = stringPtr(mimeType)
	if fileSize.Valid {
		r.FileSize = &fileSize.Int64
	}
	return &r, nil
}

// --- null helpers ---

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func nullInt64(i *int64) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
