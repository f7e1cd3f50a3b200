package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/httputil"
	"github.com/atriumhq/atrium/pkg/middleware"
	"github.com/atriumhq/atrium/pkg/store"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// listUsers handles GET /api/v1/users. Optional ?role= and ?is_active=
// query parameters narrow the listing.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	page := httputil.ParsePagination(r)

	var filter store.UserFilter
	if role := r.URL.Query().Get("role"); role != "" {
		if !auth.Role(role).Valid() {
			httputil.WriteBadRequest(w, "invalid role")
			return
		}
		filter.Role = role
	}
	if active := r.URL.Query().Get("is_active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			httputil.WriteBadRequest(w, "invalid is_active value")
			return
		}
		filter.Active = &v
	}

	users, err := s.store.ListUsers(r.Context(), tenant.ID, filter, page.PageSize, page.Offset())
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("list users failed")
		httputil.WriteInternalError(w)
		return
	}
	total, err := s.store.CountUsers(r.Context(), tenant.ID, filter)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("count users failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, ListResponse{
		Items:    users,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// getUser handles GET /api/v1/users/{id}.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	userID := mux.Vars(r)["id"]

	user, err := s.store.FindUser(r.Context(), userID, tenant.ID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("get user failed")
		httputil.WriteInternalError(w)
		return
	}
	if user == nil {
		httputil.WriteNotFound(w, "user not found")
		return
	}

	httputil.WriteSuccess(w, user)
}

// createUser handles POST /api/v1/users. Admin only; unlike registration,
// the caller picks the role.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	principal := middleware.GetPrincipal(r)

	if err := auth.Authorize(principal, auth.RoleAdmin); err != nil {
		httputil.WriteForbidden(w, err.Error())
		return
	}

	var req CreateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	if !req.Role.Valid() {
		httputil.WriteBadRequest(w, "invalid role")
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
		Role:           req.Role,
		IsActive:       true,
	}
	if err := s.createUserRecord(w, r, user); err != nil {
		return
	}

	httputil.WriteCreated(w, user)
}

// createUserRecord persists a new user and writes the error response on
// failure. A non-nil return means the response is already written.
func (s *Server) createUserRecord(w http.ResponseWriter, r *http.Request, user *auth.User) error {
	err := s.store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrDuplicate) {
		httputil.WriteConflict(w, "user with this email already exists")
		return err
	}
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("create user failed")
		httputil.WriteInternalError(w)
		return err
	}
	return nil
}

// updateUser handles PATCH /api/v1/users/{id}. Admins update anyone; users
// update themselves; role changes are admin-only either way.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	principal := middleware.GetPrincipal(r)
	userID := mux.Vars(r)["id"]

	var req UpdateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.store.FindUser(r.Context(), userID, tenant.ID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("update user lookup failed")
		httputil.WriteInternalError(w)
		return
	}
	if user == nil {
		httputil.WriteNotFound(w, "user not found")
		return
	}

	changesRole := req.Role != nil && *req.Role != user.Role
	if !auth.CanModifyUser(principal, user.ID, changesRole) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			httputil.WriteBadRequest(w, "invalid role")
			return
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("update user failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, user)
}

// deleteUser handles DELETE /api/v1/users/{id}. Admin only; implemented as
// deactivation so the user's records keep a valid author.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	principal := middleware.GetPrincipal(r)
	userID := mux.Vars(r)["id"]

	if err := auth.Authorize(principal, auth.RoleAdmin); err != nil {
		httputil.WriteForbidden(w, err.Error())
		return
	}
	if userID == principal.UserID {
		httputil.WriteBadRequest(w, "cannot delete your own account")
		return
	}

	user, err := s.store.FindUser(r.Context(), userID, tenant.ID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("delete user lookup failed")
		httputil.WriteInternalError(w)
		return
	}
	if user == nil {
		httputil.WriteNotFound(w, "user not found")
		return
	}

	user.IsActive = false
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("delete user failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteNoContent(w)
}
