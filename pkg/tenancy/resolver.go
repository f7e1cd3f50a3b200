package tenancy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Tenant resolution failure modes. The HTTP status mapping happens in the
// middleware, not here.
var (
	// ErrMissingIdentifier means no tenant identifier could be extracted
	// from the request (no header, no usable subdomain).
	ErrMissingIdentifier = errors.New("tenant identifier required (subdomain or X-Tenant-Slug header)")

	// ErrNotFound means an identifier was present but matched no tenant.
	ErrNotFound = errors.New("tenant not found")

	// ErrInactive means the tenant exists but has been deactivated.
	ErrInactive = errors.New("tenant account is inactive")
)

// Header names accepted for tenant identification, in priority order after
// the Host subdomain.
const (
	HeaderTenantSlug = "X-Tenant-Slug"
	HeaderTenantID   = "X-Tenant-ID"
)

// reservedSubdomains are shared entry points, never tenant identifiers.
var reservedSubdomains = map[string]bool{
	"www": true,
	"api": true,
	"app": true,
}

// Directory resolves tenant identifiers against the record store. A miss is
// (nil, nil); a non-nil error is an infrastructure fault and is fatal to the
// request.
type Directory interface {
	FindTenantBySlug(ctx context.Context, slug string) (*Tenant, error)
	FindTenantBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	FindTenantByID(ctx context.Context, id string) (*Tenant, error)
}

// Resolver extracts a tenant identifier from a request and binds it to a
// tenant record. It is the first stage of the request pipeline.
type Resolver struct {
	directory Directory
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve extracts the tenant identifier and looks it up. Returns
// ErrMissingIdentifier, ErrNotFound, or ErrInactive for client-correctable
// rejections; any other error is an infrastructure fault.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*Tenant, error) {
	identifier := ExtractIdentifier(req)
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}

	tenant, err := r.lookup(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("tenant lookup for %q: %w", identifier, err)
	}
	if tenant == nil {
		return nil, ErrNotFound
	}
	if !tenant.IsActive {
		return nil, ErrInactive
	}

	return tenant, nil
}

// ExtractIdentifier pulls a tenant identifier from the request. Priority:
//
//  1. X-Tenant-Slug header (explicit, preferred for API clients)
//  2. Subdomain from the Host header ("acme.saas.example" -> "acme")
//  3. X-Tenant-ID header (legacy, lowest priority)
//
// The first candidate found wins; there is no fallthrough to later sources
// once a candidate is taken.
func ExtractIdentifier(req *http.Request) string {
	if slug := req.Header.Get(HeaderTenantSlug); slug != "" {
		return slug
	}

	host := req.Host
	if host == "" {
		host = req.Header.Get("Host")
	}
	if host != "" {
		// Strip any port before splitting into labels.
		if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
		parts := strings.Split(host, ".")
		if len(parts) >= 3 {
			subdomain := parts[0]
			if !reservedSubdomains[subdomain] {
				return subdomain
			}
		}
	}

	if id := req.Header.Get(HeaderTenantID); id != "" {
		return id
	}

	return ""
}

// lookup tries slug, then subdomain, then id; first hit wins.
func (r *Resolver) lookup(ctx context.Context, identifier string) (*Tenant, error) {
	tenant, err := r.directory.FindTenantBySlug(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		return tenant, nil
	}

	tenant, err = r.directory.FindTenantBySubdomain(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		return tenant, nil
	}

	return r.directory.FindTenantByID(ctx, identifier)
}
