package api

import (
	"github.com/atriumhq/atrium/pkg/auth"
	"github.com/atriumhq/atrium/pkg/store"
)

// LoginRequest authenticates against the tenant resolved from the request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// RegisterRequest self-registers a user into the resolved tenant with the
// default member role.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// CreateUserRequest is the admin path for adding users, role included.
type CreateUserRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	FullName string    `json:"full_name"`
	Role     auth.Role `json:"role"`
}

// UpdateUserRequest applies a partial update; nil fields are untouched.
type UpdateUserRequest struct {
	FullName *string    `json:"full_name,omitempty"`
	Role     *auth.Role `json:"role,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// CreateProjectRequest creates a project owned by the caller.
type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

// UpdateProjectRequest applies a partial update; nil fields are untouched.
type UpdateProjectRequest struct {
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *store.ProjectStatus `json:"status,omitempty"`
	IsPublic    *bool                `json:"is_public,omitempty"`
}

// CreateResourceRequest adds a resource to a project.
type CreateResourceRequest struct {
	Name         string             `json:"name"`
	ResourceType store.ResourceType `json:"resource_type"`
	Content      *string            `json:"content,omitempty"`
	FileURL      *string            `json:"file_url,omitempty"`
	FileSize     *int64             `json:"file_size,omitempty"`
	MimeType     *string            `json:"mime_type,omitempty"`
}

// UpdateResourceRequest applies a partial update; nil fields are untouched.
type UpdateResourceRequest struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
	FileURL *string `json:"file_url,omitempty"`
}

// ListResponse is the common paginated list envelope.
type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
