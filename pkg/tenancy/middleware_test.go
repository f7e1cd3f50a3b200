package tenancy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func newTestMiddleware(dir Directory, excluded []string) *Middleware {
	return NewMiddleware(NewResolver(dir), excluded, testLogger(), nil)
}

func TestMiddleware_AttachesTenant(t *testing.T) {
	acme := activeTenant("t-1", "acme")
	dir := &fakeDirectory{bySlug: map[string]*Tenant{"acme": acme}}

	var seen *Tenant
	handler := newTestMiddleware(dir, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "http://example.com/projects", nil)
	req.Header.Set(HeaderTenantSlug, "acme")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "t-1", seen.ID)
}

func TestMiddleware_StatusMapping(t *testing.T) {
	suspended := activeTenant("t-2", "dormant")
	suspended.IsActive = false
	dir := &fakeDirectory{bySlug: map[string]*Tenant{"dormant": suspended}}

	tests := []struct {
		name       string
		slug       string
		wantStatus int
	}{
		{"missing identifier", "", http.StatusBadRequest},
		{"unknown tenant", "ghost", http.StatusNotFound},
		{"inactive tenant", "dormant", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestMiddleware(dir, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run on rejection")
			}))

			req := httptest.NewRequest("GET", "http://localhost/projects", nil)
			req.Host = "localhost"
			if tt.slug != "" {
				req.Header.Set(HeaderTenantSlug, tt.slug)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestMiddleware_DirectoryFaultIs502(t *testing.T) {
	dir := &fakeDirectory{err: assert.AnError}
	handler := newTestMiddleware(dir, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest("GET", "http://example.com/projects", nil)
	req.Header.Set(HeaderTenantSlug, "acme")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMiddleware_ExcludedPaths(t *testing.T) {
	handler := newTestMiddleware(&fakeDirectory{}, []string{"/health", "/metrics"}).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, FromContext(r))
			w.WriteHeader(http.StatusOK)
		}))

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		req := httptest.NewRequest("GET", "http://localhost"+path, nil)
		req.Host = "localhost"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	// Non-excluded path with no identifier still rejects.
	req := httptest.NewRequest("GET", "http://localhost/projects", nil)
	req.Host = "localhost"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCachingDirectory(t *testing.T) {
	acme := activeTenant("t-1", "acme")
	inner := &fakeDirectory{bySlug: map[string]*Tenant{"acme": acme}}
	cached := NewCachingDirectory(inner, 16, time.Minute, nil)

	tenant, err := cached.FindTenantBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	callsAfterFirst := inner.calls

	tenant, err = cached.FindTenantBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Equal(t, callsAfterFirst, inner.calls, "second lookup should hit the cache")
}

func TestCachingDirectory_MissNotCached(t *testing.T) {
	inner := &fakeDirectory{}
	cached := NewCachingDirectory(inner, 16, time.Minute, nil)

	tenant, err := cached.FindTenantBySlug(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, tenant)
	first := inner.calls

	// A later lookup must go back to the directory so a newly created
	// tenant is found without waiting out the TTL.
	inner.bySlug = map[string]*Tenant{"ghost": activeTenant("t-9", "ghost")}
	tenant, err = cached.FindTenantBySlug(context.Background(), "ghost")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Greater(t, inner.calls, first)
}

func TestCachingDirectory_Invalidate(t *testing.T) {
	acme := activeTenant("t-1", "acme")
	inner := &fakeDirectory{bySlug: map[string]*Tenant{"acme": acme}}
	cached := NewCachingDirectory(inner, 16, time.Minute, nil)

	_, err := cached.FindTenantBySlug(context.Background(), "acme")
	require.NoError(t, err)

	cached.Invalidate(acme)
	before := inner.calls
	_, err = cached.FindTenantBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Greater(t, inner.calls, before, "invalidated entry should refetch")
}
