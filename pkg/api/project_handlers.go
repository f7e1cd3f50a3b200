package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/httputil"
	"github.com/atriumhq/atrium/pkg/middleware"
	"github.com/atriumhq/atrium/pkg/store"
	"github.com/atriumhq/atrium/pkg/tenancy"
)

// listProjects handles GET /api/v1/projects. Optional ?status= and
// ?owner_id= query parameters narrow the listing.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	page := httputil.ParsePagination(r)

	var filter store.ProjectFilter
	if status := r.URL.Query().Get("status"); status != "" {
		if !store.ProjectStatus(status).Valid() {
			httputil.WriteBadRequest(w, "invalid status")
			return
		}
		filter.Status = store.ProjectStatus(status)
	}
	filter.OwnerID = r.URL.Query().Get("owner_id")

	projects, err := s.store.ListProjects(r.Context(), tenant.ID, filter, page.PageSize, page.Offset())
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("list projects failed")
		httputil.WriteInternalError(w)
		return
	}
	total, err := s.store.CountProjects(r.Context(), tenant.ID, filter)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("count projects failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, ListResponse{
		Items:    projects,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// getProject handles GET /api/v1/projects/{id}. Reads bump the view
// counter; a counter failure never fails the read.
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	if err := s.store.TouchProjectView(r.Context(), project.ID, project.TenantID); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Warn("project view count update failed")
	} else {
		project.ViewCount++
	}
	httputil.WriteSuccess(w, project)
}

// createProject handles POST /api/v1/projects. Viewers cannot create.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	principal := middleware.GetPrincipal(r)

	if !auth.CanModifyProject(principal) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	var req CreateProjectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	project := &store.Project{
		TenantID:    tenant.ID,
		OwnerID:     principal.UserID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("create project failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, project)
}

// updateProject handles PATCH /api/v1/projects/{id}. Any member may edit
// any project in the tenant.
func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	if !auth.CanModifyProject(principal) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	project, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			httputil.WriteBadRequest(w, "name cannot be empty")
			return
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			httputil.WriteBadRequest(w, "invalid status")
			return
		}
		project.Status = *req.Status
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}

	if err := s.store.UpdateProject(r.Context(), project); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("update project failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, project)
}

// deleteProject handles DELETE /api/v1/projects/{id}. Admins delete any
// project; owners delete their own if they hold at least member.
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	project, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	if !auth.CanDeleteProject(principal, project.OwnerID) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	if err := s.store.DeleteProject(r.Context(), project.ID, project.TenantID); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("delete project failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteNoContent(w)
}

// loadProject fetches the {id} path project within the resolved tenant,
// writing the error response on failure.
func (s *Server) loadProject(w http.ResponseWriter, r *http.Request) (*store.Project, bool) {
	tenant := tenancy.FromContext(r)
	projectID := mux.Vars(r)["id"]

	project, err := s.store.FindProject(r.Context(), projectID, tenant.ID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("project lookup failed")
		httputil.WriteInternalError(w)
		return nil, false
	}
	if project == nil {
		httputil.WriteNotFound(w, "project not found")
		return nil, false
	}
	return project, true
}
