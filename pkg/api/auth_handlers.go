package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/httputil"
	"github.com/atriumhq/atrium/pkg/middleware"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// login handles POST /api/v1/auth/login. Credentials are checked within the
// resolved tenant only, so the same email under another tenant can never
// match. All failure modes share one generic message.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	if tenant == nil {
		httputil.WriteBadRequest(w, "tenant identifier required")
		return
	}

	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "email and password are required")
		return
	}

	log := s.logger.FromContext(r.Context())

	user, err := s.store.FindUserByEmail(r.Context(), tenant.ID, req.Email)
	if err != nil {
		log.WithError(err).Error("login lookup failed")
		httputil.WriteInternalError(w)
		return
	}
	if user == nil {
		log.SecurityEvent("failed_login", map[string]interface{}{
			"reason":    "user_not_found",
			"tenant_id": tenant.ID,
		})
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}
	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		log.SecurityEvent("failed_login", map[string]interface{}{
			"reason":    "invalid_password",
			"user_id":   user.ID,
			"tenant_id": tenant.ID,
		})
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}
	if !user.IsActive {
		log.SecurityEvent("failed_login", map[string]interface{}{
			"reason":    "user_inactive",
			"user_id":   user.ID,
			"tenant_id": tenant.ID,
		})
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		log.WithError(err).Error("token issuance failed")
		httputil.WriteInternalError(w)
		return
	}

	log.WithField("user_id", user.ID).WithField("tenant_id", tenant.ID).Info("successful login")
	httputil.WriteSuccess(w, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Unix(),
	})
}

// register handles POST /api/v1/auth/register. New users land in the
// resolved tenant with the member role; role escalation goes through the
// admin user endpoints.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	if tenant == nil {
		httputil.WriteBadRequest(w, "tenant identifier required")
		return
	}

	var req RegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("password hashing failed")
		httputil.WriteInternalError(w)
		return
	}

	user := &auth.User{
		TenantID:       tenant.ID,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashed,
		Role:           auth.RoleMember,
		IsActive:       true,
	}
	if err := s.createUserRecord(w, r, user); err != nil {
		return
	}

	httputil.WriteCreated(w, user)
}

// refreshToken handles POST /api/v1/auth/refresh. Refresh tokens are not
// implemented; clients re-authenticate when the access token expires.
func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorMessage(w, http.StatusNotImplemented, "token refresh is not supported; re-authenticate via /auth/login")
}

// currentUser handles GET /api/v1/auth/me.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	user, err := s.store.FindUser(r.Context(), principal.UserID, principal.TenantID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("current user lookup failed")
		httputil.WriteInternalError(w)
		return
	}
	if user == nil {
		httputil.WriteNotFound(w, "user not found")
		return
	}

	httputil.WriteSuccess(w, user)
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("a valid email is required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
