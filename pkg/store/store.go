package store

import (
	"context"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// Every lookup in this package is tenant-scoped: record IDs are only
// meaningful together with a tenant ID, and no method returns a row from
// another tenant no matter what ID it is handed. A miss is (nil, nil);
// non-nil errors are infrastructure faults.

// TenantStore manages tenant records. It satisfies tenancy.Directory.
type TenantStore interface {
	tenancy.Directory
	CreateTenant(ctx context.Context, tenant *tenancy.Tenant) error
	UpdateTenant(ctx context.Context, tenant *tenancy.Tenant) error
}

// UserStore manages user records. It satisfies auth.UserFinder.
type UserStore interface {
	auth.UserFinder
	FindUserByEmail(ctx context.Context, tenantID, email string) (*auth.User, error)
	CreateUser(ctx context.Context, user *auth.User) error
	UpdateUser(ctx context.Context, user *auth.User) error
	ListUsers(ctx context.Context, tenantID string, filter UserFilter, limit, offset int) ([]*auth.User, error)
	CountUsers(ctx context.Context, tenantID string, filter UserFilter) (int, error)
}

// ProjectStore manages project records. Deletes are soft; deleted rows
// never appear in reads.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *Project) error
	FindProject(ctx context.Context, projectID, tenantID string) (*Project, error)
	ListProjects(ctx context.Context, tenantID string, filter ProjectFilter, limit, offset int) ([]*Project, error)
	CountProjects(ctx context.Context, tenantID string, filter ProjectFilter) (int, error)
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, projectID, tenantID string) error
	TouchProjectView(ctx context.Context, projectID, tenantID string) error
}

// ResourceStore manages resource records within projects.
type ResourceStore interface {
	CreateResource(ctx context.Context, resource *Resource) error
	FindResource(ctx context.Context, resourceID, tenantID string) (*Resource, error)
	ListResources(ctx context.Context, tenantID, projectID string, limit, offset int) ([]*Resource, error)
	CountResources(ctx context.Context, tenantID, projectID string) (int, error)
	UpdateResource(ctx context.Context, resource *Resource) error
	DeleteResource(ctx context.Context, resourceID, tenantID string) error
}

// Store is the full record store contract the API depends on.
type Store interface {
	TenantStore
	UserStore
	ProjectStore
	ResourceStore
}
