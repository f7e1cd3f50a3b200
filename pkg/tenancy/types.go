package tenancy

import "time"

// SubscriptionTier affects rate limits and features. Billing itself lives
// outside this service; only the stored tier string is visible here.
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierBasic      SubscriptionTier = "basic"
	TierPremium    SubscriptionTier = "premium"
	TierEnterprise SubscriptionTier = "enterprise"
)

// Tenant is the isolation boundary: one customer organization. Slug and
// subdomain are globally unique and immutable once assigned. Tenants are
// deactivated, never deleted, to halt access.
type Tenant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Subdomain string `json:"subdomain"`
	IsActive  bool   `json:"is_active"`

	SubscriptionTier SubscriptionTier `json:"subscription_tier"`

	// Per-tenant rate limit overrides; nil means use the global default.
	RateLimitPerMinute *int `json:"rate_limit_per_minute,omitempty"`
	RateLimitBurst     *int `json:"rate_limit_burst,omitempty"`

	AdminEmail   string  `json:"admin_email"`
	BillingEmail *string `json:"billing_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveRateLimit returns the tenant's requests-per-minute, falling back
// to the supplied default.
func (t *Tenant) EffectiveRateLimit(defaultRate int) int {
	if t.RateLimitPerMinute != nil && *t.RateLimitPerMinute > 0 {
		return *t.RateLimitPerMinute
	}
	return defaultRate
}

// EffectiveBurst returns the tenant's bucket capacity, falling back to the
// supplied default.
func (t *Tenant) EffectiveBurst(defaultBurst int) int {
	if t.RateLimitBurst != nil && *t.RateLimitBurst > 0 {
		return *t.RateLimitBurst
	}
	return defaultBurst
}
