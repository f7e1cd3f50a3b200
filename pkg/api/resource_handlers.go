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

// listResources handles GET /api/v1/projects/{id}/resources.
func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	page := httputil.ParsePagination(r)

	project, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	resources, err := s.store.ListResources(r.Context(), tenant.ID, project.ID, page.PageSize, page.Offset())
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("list resources failed")
		httputil.WriteInternalError(w)
		return
	}
	total, err := s.store.CountResources(r.Context(), tenant.ID, project.ID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("count resources failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, ListResponse{
		Items:    resources,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// createResource handles POST /api/v1/projects/{id}/resources. Resource
// edits follow the project rule: member and up.
func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	tenant := tenancy.FromContext(r)
	principal := middleware.GetPrincipal(r)

	if !auth.CanModifyProject(principal) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	project, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	var req CreateResourceRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}
	if req.ResourceType == "" {
		httputil.WriteBadRequest(w, "resource_type is required")
		return
	}

	resource := &store.Resource{
		TenantID:     tenant.ID,
		ProjectID:    project.ID,
		Name:         req.Name,
		ResourceType: req.ResourceType,
		Content:      req.Content,
		FileURL:      req.FileURL,
		FileSize:     req.FileSize,
		MimeType:     req.MimeType,
	}
	if err := s.store.CreateResource(r.Context(), resource); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("create resource failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, resource)
}

// getResource handles GET /api/v1/resources/{id}.
func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	resource, ok := s.loadResource(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, resource)
}

// updateResource handles PATCH /api/v1/resources/{id}.
func (s *Server) updateResource(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	if !auth.CanModifyProject(principal) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	resource, ok := s.loadResource(w, r)
	if !ok {
		return
	}

	var req UpdateResourceRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			httputil.WriteBadRequest(w, "name cannot be empty")
			return
		}
		resource.Name = *req.Name
	}
	if req.Content != nil {
		resource.Content = req.Content
	}
	if req.FileURL != nil {
		resource.FileURL = req.FileURL
	}

	if err := s.store.UpdateResource(r.Context(), resource); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("update resource failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, resource)
}

// deleteResource handles DELETE /api/v1/resources/{id}.
func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	if !auth.CanModifyProject(principal) {
		httputil.WriteForbidden(w, "insufficient permissions")
		return
	}

	resource, ok := s.loadResource(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteResource(r.Context(), resource.ID, resource.TenantID); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("delete resource failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteNoContent(w)
}

// loadResource fetches the {id} path resource within the resolved tenant,
// writing the error response on failure.
func (s *Server) loadResource(w http.ResponseWriter, r *http.Request) (*store.Resource, bool) {
	tenant := tenancy.FromContext(r)
	resourceID := mux.Vars(r)["id"]

	resource, err := s.store.FindResource(r.Context(), resourceID, tenant.ID)
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("resource lookup failed")
		httputil.WriteInternalError(w)
		return nil, false
	}
	if resource == nil {
		httputil.WriteNotFound(w, "resource not found")
		return nil, false
	}
	return resource, true
}
