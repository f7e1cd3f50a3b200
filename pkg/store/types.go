package store

import "time"

// ProjectStatus tracks a project's lifecycle within its tenant.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectArchived, ProjectCompleted:
		return true
	}
	return false
}

// Project belongs to exactly one tenant. Deletion is soft: rows are flagged
// and filtered out of every read path rather than removed.
type Project struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenant_id"`
	OwnerID     string        `json:"owner_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	IsPublic    bool          `json:"is_public"`
	ViewCount   int           `json:"view_count"`

	IsDeleted bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFilter narrows user listings. Zero values mean no filtering.
type UserFilter struct {
	Role   string
	Active *bool
}

// ProjectFilter narrows project listings. Zero values mean no filtering.
type ProjectFilter struct {
	Status  ProjectStatus
	OwnerID string
}

// ResourceType distinguishes the payloads a resource can carry.
type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceFile     ResourceType = "file"
	ResourceLink     ResourceType = "link"
	ResourceNote     ResourceType = "note"
)

// Resource is an artifact within a project. Content holds text payloads;
// file-backed resources carry a URL into external storage instead.
type Resource struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ProjectID    string       `json:"project_id"`
	Name         string       `json:"name"`
	ResourceType ResourceType `json:"resource_type"`
	Content      *string      `json:"content,omitempty"`
	FileURL      *string      `json:"file_url,omitempty"`
	FileSize     *int64       `json:"file_size,omitempty"`
	MimeType     *string      `json:"mime_type,omitempty"`
	Version      int          `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
