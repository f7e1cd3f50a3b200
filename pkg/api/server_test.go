package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/config"
	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/store"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// sharedHash is one precomputed bcrypt hash reused across seeded users to
// keep the suite fast; it is the hash of "password-123".
var sharedHash string

func init() {
	var err error
	sharedHash, err = auth.HashPassword("password-123")
	if err != nil {
		panic(err)
	}
}

type fixture struct {
	server *Server
	store  *store.SQLStore
	redis  *miniredis.Miniredis

	acme      *tenancy.Tenant
	contoso   *tenancy.Tenant
	inactive  *tenancy.Tenant
	acmeAdmin *auth.User
	acmeUser  *auth.User // member
	acmeView  *auth.User // viewer
	contosoU  *auth.User
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenLifetime: 30 * time.Minute,
		},
		RateLimit: config.RateLimitConfig{
			// Generous defaults so only tenants with explicit overrides
			// exercise admission in tests.
			RequestsPerMinute: 6000,
			Burst:             1000,
		},
		Tenancy: config.TenancyConfig{
			ExcludedPaths: []string{"/health", "/metrics"},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, store.Migrate(context.Background(), db))
	st := store.NewSQLStore(db, 5*time.Second, nil)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	f := &fixture{
		server: NewServer(testConfig(), st, client, logger, nil),
		store:  st,
		redis:  mr,
	}
	f.seed(t)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	f.acme = &tenancy.Tenant{Name: "Acme", Slug: "acme", Subdomain: "acme", IsActive: true, AdminEmail: "admin@acme.example"}
	f.contoso = &tenancy.Tenant{Name: "Contoso", Slug: "contoso", Subdomain: "contoso", IsActive: true, AdminEmail: "admin@contoso.example"}
	f.inactive = &tenancy.Tenant{Name: "Dormant", Slug: "dormant", Subdomain: "dormant", IsActive: false, AdminEmail: "admin@dormant.example"}
	for _, tenant := range []*tenancy.Tenant{f.acme, f.contoso, f.inactive} {
		require.NoError(t, f.store.CreateTenant(ctx, tenant))
	}

	f.acmeAdmin = f.seedUser(t, f.acme.ID, "admin@acme.example", auth.RoleAdmin)
	f.acmeUser = f.seedUser(t, f.acme.ID, "member@acme.example", auth.RoleMember)
	f.acmeView = f.seedUser(t, f.acme.ID, "viewer@acme.example", auth.RoleViewer)
	f.contosoU = f.seedUser(t, f.contoso.ID, "member@contoso.example", auth.RoleMember)
}

func (f *fixture) seedUser(t *testing.T, tenantID, email string, role auth.Role) *auth.User {
	t.Helper()
	user := &auth.User{
		TenantID:       tenantID,
		Email:          email,
		FullName:       "Seeded User",
		HashedPassword: sharedHash,
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	return user
}

func (f *fixture) tokenFor(t *testing.T, user *auth.User) string {
	t.Helper()
	token, _, err := f.server.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// do performs a request against the full pipeline.
func (f *fixture) do(method, path, tenantSlug, token string, body interface{}) *httptest.ResponseRecorder {
	var payload io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		payload = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://app.saas.example"+path, payload)
	if tenantSlug != "" {
		req.Header.Set(tenancy.HeaderTenantSlug, tenantSlug)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func TestPipeline_LoginAndCreateProject(t *testing.T) {
	f := newFixture(t)

	rec := f.do("POST", "/api/v1/auth/login", "acme", "", LoginRequest{
		Email:    "member@acme.example",
		Password: "password-123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokenResp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.AccessToken)
	assert.Equal(t, "bearer", tokenResp.TokenType)

	rec = f.do("POST", "/api/v1/projects", "acme", tokenResp.AccessToken, CreateProjectRequest{Name: "Apollo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var project store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Equal(t, f.acme.ID, project.TenantID)
	assert.Equal(t, f.acmeUser.ID, project.OwnerID)

	rec = f.do("GET", "/api/v1/projects/"+project.ID, "acme", tokenResp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Equal(t, 1, project.ViewCount)

	rec = f.do("GET", "/api/v1/projects?status=active&owner_id="+f.acmeUser.ID, "acme", tokenResp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Total)

	rec = f.do("GET", "/api/v1/projects?status=bogus", "acme", tokenResp.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipeline_LoginFailures(t *testing.T) {
	f := newFixture(t)

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/auth/login", "acme", "", LoginRequest{Email: "member@acme.example", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("unknown email gets identical response", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/auth/login", "acme", "", LoginRequest{Email: "ghost@acme.example", Password: "password-123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("email scoped to tenant", func(t *testing.T) {
		// A contoso user's credentials do not work under acme.
		rec := f.do("POST", "/api/v1/auth/login", "acme", "", LoginRequest{Email: "member@contoso.example", Password: "password-123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPipeline_TenantRejections(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, f.acmeUser)

	t.Run("missing identifier is 400", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://localhost/api/v1/projects", nil)
		req.Host = "localhost"
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tenant is 404", func(t *testing.T) {
		rec := f.do("GET", "/api/v1/projects", "ghost", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inactive tenant is 403 before authentication", func(t *testing.T) {
		// Even a garbage token gets the tenant rejection, proving the
		// inactive check runs first.
		rec := f.do("GET", "/api/v1/projects", "dormant", "garbage-token", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "inactive")
	})
}

func TestPipeline_IsolationViolation(t *testing.T) {
	f := newFixture(t)

	// Token minted for contoso, presented against acme.
	token := f.tokenFor(t, f.contosoU)
	rec := f.do("GET", "/api/v1/projects", "acme", token, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "contoso")
}

func TestPipeline_RoleEnforcement(t *testing.T) {
	f := newFixture(t)
	viewerToken := f.tokenFor(t, f.acmeView)
	memberToken := f.tokenFor(t, f.acmeUser)

	t.Run("viewer cannot create project", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/projects", "acme", viewerToken, CreateProjectRequest{Name: "Denied"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("member can create and viewer can read", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/projects", "acme", memberToken, CreateProjectRequest{Name: "Apollo"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var project store.Project
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))

		rec = f.do("GET", "/api/v1/projects/"+project.ID, "acme", viewerToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = f.do("PATCH", "/api/v1/projects/"+project.ID, "acme", viewerToken, UpdateProjectRequest{})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPipeline_ProjectDeletionRules(t *testing.T) {
	f := newFixture(t)
	memberToken := f.tokenFor(t, f.acmeUser)
	adminToken := f.tokenFor(t, f.acmeAdmin)

	create := func(token string) store.Project {
		rec := f.do("POST", "/api/v1/projects", "acme", token, CreateProjectRequest{Name: "Target"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var project store.Project
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
		return project
	}

	t.Run("owner deletes own project", func(t *testing.T) {
		project := create(memberToken)
		rec := f.do("DELETE", "/api/v1/projects/"+project.ID, "acme", memberToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("non-owner member cannot delete", func(t *testing.T) {
		project := create(adminToken)
		rec := f.do("DELETE", "/api/v1/projects/"+project.ID, "acme", memberToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes anything", func(t *testing.T) {
		project := create(memberToken)
		rec := f.do("DELETE", "/api/v1/projects/"+project.ID, "acme", adminToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestPipeline_CrossTenantResourceAccess(t *testing.T) {
	f := newFixture(t)
	acmeToken := f.tokenFor(t, f.acmeUser)
	contosoToken := f.tokenFor(t, f.contosoU)

	rec := f.do("POST", "/api/v1/projects", "acme", acmeToken, CreateProjectRequest{Name: "Secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))

	// A leaked project ID resolves to nothing under another tenant; the
	// response does not distinguish "forbidden" from "absent".
	rec = f.do("GET", "/api/v1/projects/"+project.ID, "contoso", contosoToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPipeline_RateLimit(t *testing.T) {
	f := newFixture(t)

	// Tenant-level override keeps the budget small enough to exhaust.
	rate := 60
	burst := 5
	f.acme.RateLimitPerMinute = &rate
	f.acme.RateLimitBurst = &burst
	require.NoError(t, f.store.UpdateTenant(context.Background(), f.acme))

	token := f.tokenFor(t, f.acmeUser)

	statuses := make([]int, 0, burst+1)
	var last *httptest.ResponseRecorder
	for i := 0; i < burst+1; i++ {
		last = f.do("GET", "/api/v1/projects", "acme", token, nil)
		statuses = append(statuses, last.Code)
	}

	allowed := 0
	for _, code := range statuses {
		if code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, burst, allowed)
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestPipeline_RateLimitFailOpen(t *testing.T) {
	f := newFixture(t)
	f.redis.Close()

	token := f.tokenFor(t, f.acmeUser)
	for i := 0; i < 10; i++ {
		rec := f.do("GET", "/api/v1/projects", "acme", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestPipeline_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do("POST", "/api/v1/auth/register", "acme", "", RegisterRequest{
		Email:    "new@acme.example",
		Password: "password-123",
		FullName: "New User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, auth.RoleMember, created.Role)
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	rec = f.do("POST", "/api/v1/auth/login", "acme", "", LoginRequest{
		Email:    "new@acme.example",
		Password: "password-123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/auth/register", "acme", "", RegisterRequest{
			Email:    "new@acme.example",
			Password: "password-123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestPipeline_RefreshNotImplemented(t *testing.T) {
	f := newFixture(t)
	rec := f.do("POST", "/api/v1/auth/refresh", "acme", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestPipeline_CurrentUser(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, f.acmeUser)

	rec := f.do("GET", "/api/v1/auth/me", "acme", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, f.acmeUser.ID, user.ID)
}

func TestUserManagement(t *testing.T) {
	f := newFixture(t)
	adminToken := f.tokenFor(t, f.acmeAdmin)
	memberToken := f.tokenFor(t, f.acmeUser)

	t.Run("member cannot create users", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/users", "acme", memberToken, CreateUserRequest{
			Email: "x@acme.example", Password: "password-123", Role: auth.RoleViewer,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates user with role", func(t *testing.T) {
		rec := f.do("POST", "/api/v1/users", "acme", adminToken, CreateUserRequest{
			Email: "ops@acme.example", Password: "password-123", Role: auth.RoleAdmin,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("member updates own name but not own role", func(t *testing.T) {
		name := "Renamed"
		rec := f.do("PATCH", "/api/v1/users/"+f.acmeUser.ID, "acme", memberToken, UpdateUserRequest{FullName: &name})
		assert.Equal(t, http.StatusOK, rec.Code)

		admin := auth.RoleAdmin
		rec = f.do("PATCH", "/api/v1/users/"+f.acmeUser.ID, "acme", memberToken, UpdateUserRequest{Role: &admin})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin promotes user and demotion takes effect next request", func(t *testing.T) {
		viewer := auth.RoleViewer
		rec := f.do("PATCH", "/api/v1/users/"+f.acmeUser.ID, "acme", adminToken, UpdateUserRequest{Role: &viewer})
		require.Equal(t, http.StatusOK, rec.Code)

		// The member's existing token is still valid, but the role is
		// re-read from the record on every request.
		rec = f.do("POST", "/api/v1/projects", "acme", memberToken, CreateProjectRequest{Name: "Blocked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deactivates user, who is then locked out", func(t *testing.T) {
		victim := f.seedUser(t, f.acme.ID, "victim@acme.example", auth.RoleMember)
		victimToken := f.tokenFor(t, victim)

		rec := f.do("DELETE", "/api/v1/users/"+victim.ID, "acme", adminToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do("GET", "/api/v1/projects", "acme", victimToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		rec := f.do("DELETE", "/api/v1/users/"+f.acmeAdmin.ID, "acme", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list filters by active state", func(t *testing.T) {
		rec := f.do("GET", "/api/v1/users?is_active=false", "acme", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var listed ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		// The deactivated victim from the earlier subtest.
		assert.Equal(t, 1, listed.Total)

		rec = f.do("GET", "/api/v1/users?role=superuser", "acme", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResourceLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.tokenFor(t, f.acmeUser)

	rec := f.do("POST", "/api/v1/projects", "acme", token, CreateProjectRequest{Name: "Apollo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))

	content := "kickoff notes"
	rec = f.do("POST", "/api/v1/projects/"+project.ID+"/resources", "acme", token, CreateResourceRequest{
		Name:         "Notes",
		ResourceType: store.ResourceNote,
		Content:      &content,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resource store.Resource
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resource))
	assert.Equal(t, 1, resource.Version)

	updated := "revised notes"
	rec = f.do("PATCH", "/api/v1/resources/"+resource.ID, "acme", token, UpdateResourceRequest{Content: &updated})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resource))
	assert.Equal(t, 2, resource.Version)

	rec = f.do("GET", "/api/v1/projects/"+project.ID+"/resources", "acme", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	rec = f.do("DELETE", "/api/v1/resources/"+resource.ID, "acme", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do("GET", "/api/v1/resources/"+resource.ID, "acme", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
