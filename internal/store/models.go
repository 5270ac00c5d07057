package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"notebase/app/internal/apperr"
)

// Role is the position a user holds within a workspace. Membership itself is
// the authorization gate; the role is only consulted for workspace deletion.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
	RoleCommenter Role = "commenter"
	RoleViewer    Role = "viewer"
)

// DefaultMemberRole is assigned to invited members; creators become owners.
const DefaultMemberRole = RoleEditor

// ParseRole validates a role string against the closed set.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleOwner, RoleAdmin, RoleEditor, RoleCommenter, RoleViewer:
		return Role(value), nil
	default:
		return "", eris.Wrapf(apperr.ErrValidation, "unknown role: %s", value)
	}
}

// PageType distinguishes plain pages from database pages.
type PageType string

const (
	PageTypePage     PageType = "page"
	PageTypeDatabase PageType = "database"
)

// ParsePageType validates a page type string against the closed set.
func ParsePageType(value string) (PageType, error) {
	switch PageType(value) {
	case PageTypePage, PageTypeDatabase:
		return PageType(value), nil
	default:
		return "", eris.Wrapf(apperr.ErrValidation, "unknown page type: %s", value)
	}
}

// User is a registered account. The password hash is never serialized outward.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex:idx_users_email;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName defines the table name for the User model.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a fresh id when none was provided.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Workspace is the top-level tenant container for pages and memberships.
type Workspace struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:255;uniqueIndex:idx_workspaces_slug;not null" json:"slug"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []WorkspaceMember `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Pages   []Page            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName defines the table name for the Workspace model.
func (Workspace) TableName() string {
	return "workspaces"
}

// BeforeCreate assigns a fresh id when none was provided.
func (w *Workspace) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WorkspaceMember grants a user a role within a workspace. The
// (workspace, user) pair is unique and is the sole authorization predicate
// used by the guard.
type WorkspaceMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user" json:"workspace_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user" json:"user_id"`
	Role        Role      `gorm:"size:32;not null;default:'editor'" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName defines the table name for the WorkspaceMember model.
func (WorkspaceMember) TableName() string {
	return "workspace_members"
}

// BeforeCreate assigns a fresh id when none was provided.
func (m *WorkspaceMember) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Page is a titled node in a per-workspace forest. Archival is a soft delete:
// archived pages drop out of listings and lookups but keep their row so child
// references stay intact.
type Page struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_pages_workspace" json:"workspace_id"`
	ParentPageID *uuid.UUID `gorm:"type:uuid" json:"parent_page_id"`
	Title        string     `gorm:"size:512;not null" json:"title"`
	Type         PageType   `gorm:"size:32;not null;default:'page'" json:"type"`
	Icon         *string    `gorm:"size:255" json:"icon"`
	CoverURL     *string    `gorm:"size:1024" json:"cover_url"`
	IsArchived   bool       `gorm:"not null;default:false" json:"is_archived"`
	CreatedBy    uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy    uuid.UUID  `gorm:"type:uuid;not null" json:"updated_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Parent  *Page        `gorm:"foreignKey:ParentPageID;constraint:OnDelete:SET NULL" json:"-"`
	Content *PageContent `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName defines the table name for the Page model.
func (Page) TableName() string {
	return "pages"
}

// BeforeCreate assigns a fresh id when none was provided.
func (p *Page) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PageContent holds the single JSON document attached to a page. Created
// lazily on the first content write; later writes update the row in place.
type PageContent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PageID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_page_content_page" json:"page_id"`
	Content   JSON      `gorm:"not null" json:"content"`
	Meta      JSON      `gorm:"not null" json:"meta"`
	UpdatedBy uuid.UUID `gorm:"type:uuid;not null" json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName defines the table name for the PageContent model.
func (PageContent) TableName() string {
	return "page_content"
}

// BeforeCreate assigns a fresh id when none was provided.
func (c *PageContent) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
