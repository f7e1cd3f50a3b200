package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/atriumhq/atrium/pkg/config"
	"github.com/atriumhq/atrium/pkg/httputil"
	"github.com/atriumhq/atrium/pkg/observability"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// bucketTTLSeconds bounds how long an idle tenant's bucket survives in
// Redis. An expired bucket is indistinguishable from a fresh one.
const bucketTTLSeconds = 60

// tokenBucketScript is the whole admit decision as one atomic Lua script.
// Two concurrent requests for the same tenant must not both read the same
// stale token count; running read-refill-consume-write inside Redis makes
// the bucket update the synchronization point. State is only written on
// allow, so a denied burst cannot advance the refill watermark.
//
// KEYS[1] bucket key; ARGV: rate (tokens/min), burst, now (seconds), ttl.
// Returns {allowed, remaining tokens (truncated), retry-after seconds}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])

if tokens == nil or ts == nil then
	redis.call('HSET', key, 'tokens', burst - 1, 'ts', now)
	redis.call('EXPIRE', key, ttl)
	return {1, burst - 1, 0}
end

local elapsed = now - ts
if elapsed < 0 then
	elapsed = 0
end
tokens = tokens + elapsed * rate / 60
if tokens > burst then
	tokens = burst
end

if tokens >= 1 then
	tokens = tokens - 1
	redis.call('HSET', key, 'tokens', tokens, 'ts', now)
	redis.call('EXPIRE', key, ttl)
	return {1, math.floor(tokens), 0}
end

local retry = math.ceil((1 - tokens) / (rate / 60)) + 1
return {0, 0, retry}
`)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter int
}

// RateLimiter is the per-tenant admission controller. Bucket state lives in
// Redis so the limit holds across instances; per-request atomicity comes
// from the Lua script, not in-process locking.
type RateLimiter struct {
	redis   *redis.Client
	cfg     config.RateLimitConfig
	logger  *observability.Logger
	metrics *observability.Metrics

	now func() time.Time
}

// NewRateLimiter creates the admission controller. Metrics may be nil.
func NewRateLimiter(redisClient *redis.Client, cfg config.RateLimitConfig, logger *observability.Logger, metrics *observability.Metrics) *RateLimiter {
	return &RateLimiter{
		redis:   redisClient,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Admit runs the token bucket for the tenant. A Redis failure returns an
// error and leaves admission policy to the caller.
func (rl *RateLimiter) Admit(ctx context.Context, tenant *tenancy.Tenant) (Decision, error) {
	rate := tenant.EffectiveRateLimit(rl.cfg.RequestsPerMinute)
	burst := tenant.EffectiveBurst(rl.cfg.Burst)
	key := "ratelimit:tenant:" + tenant.ID
	now := float64(rl.now().UnixNano()) / float64(time.Second)

	result, err := tokenBucketScript.Run(ctx, rl.redis,
		[]string{key}, rate, burst, now, bucketTTLSeconds,
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("rate limit check: unexpected script result %v", result)
	}

	decision := Decision{
		Allowed:    values[0].(int64) == 1,
		Limit:      rate,
		Remaining:  int(values[1].(int64)),
		RetryAfter: int(values[2].(int64)),
	}
	return decision, nil
}

// RateLimitMiddleware enforces per-tenant admission after tenant
// resolution. Requests with no resolved tenant bypass it.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	cfg     config.RateLimitConfig
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewRateLimitMiddleware creates the admission middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, cfg config.RateLimitConfig, logger *observability.Logger, metrics *observability.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, cfg: cfg, logger: logger, metrics: metrics}
}

// Handler wraps next with admission control.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExcluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tenant := tenancy.FromContext(r)
		if tenant == nil {
			next.ServeHTTP(w, r)
			return
		}

		decision, err := m.limiter.Admit(r.Context(), tenant)
		if err != nil {
			m.degrade(w, r, next, err)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			m.countDecision("denied")
			m.logger.FromContext(r.Context()).
				WithField("tenant_id", tenant.ID).
				WithField("retry_after", decision.RetryAfter).
				Warn("rate limit exceeded")
			httputil.WriteRateLimited(w, decision.RetryAfter)
			return
		}

		m.countDecision("allowed")
		next.ServeHTTP(w, r)
	})
}

// degrade applies the availability policy when Redis is unreachable. The
// default admits everything with a warning; FailClosed turns the same
// condition into 503s.
func (m *RateLimitMiddleware) degrade(w http.ResponseWriter, r *http.Request, next http.Handler, err error) {
	if m.metrics != nil {
		m.metrics.RateLimitDegradedTotal.Inc()
	}

	if m.cfg.FailClosed {
		m.countDecision("rejected_degraded")
		m.logger.FromContext(r.Context()).WithError(err).
			Error("rate limit store unavailable, rejecting request")
		httputil.WriteServiceUnavailable(w, "service temporarily unavailable")
		return
	}

	m.countDecision("allowed_degraded")
	m.logger.FromContext(r.Context()).WithError(err).
		Warn("rate limit store unavailable, admitting request unthrottled")
	next.ServeHTTP(w, r)
}

func (m *RateLimitMiddleware) isExcluded(path string) bool {
	for _, prefix := range m.cfg.ExcludedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *RateLimitMiddleware) countDecision(decision string) {
	if m.metrics != nil {
		m.metrics.RateLimitDecisionsTotal.WithLabelValues(decision).Inc()
	}
}
