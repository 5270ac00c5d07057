package store

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WorkspaceRepository persists workspaces.
type WorkspaceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Get returns the workspace for the provided id or nil when not found.
func (r *WorkspaceRepository) Get(id uuid.UUID) (*Workspace, error) {
	var workspace Workspace
	err := r.db.First(&workspace, "id = ?", id).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logError(r.logger, logrus.Fields{"workspace_id": id}, err, "fetching workspace")
		return nil, eris.Wrapf(err, "fetching workspace: %s", id)
	}

	return &workspace, nil
}

// Add inserts a new workspace row.
func (r *WorkspaceRepository) Add(workspace *Workspace) error {
	if workspace == nil {
		return eris.New("workspace is nil")
	}

	if err := r.db.Create(workspace).Error; err != nil {
		logError(r.logger, logrus.Fields{"slug": workspace.Slug}, err, "creating workspace")
		return eris.Wrapf(err, "creating workspace: %s", workspace.Slug)
	}

	return nil
}

// Delete removes the workspace row. Members and pages go with it via the
// foreign-key cascades.
func (r *WorkspaceRepository) Delete(id uuid.UUID) error {
	if err := r.db.Delete(&Workspace{}, "id = ?", id).Error; err != nil {
		logError(r.logger, logrus.Fields{"workspace_id": id}, err, "deleting workspace")
		return eris.Wrapf(err, "deleting workspace: %s", id)
	}

	return nil
}

// MemberRepository persists workspace memberships.
type MemberRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Add inserts a new membership row.
func (r *MemberRepository) Add(member *WorkspaceMember) error {
	if member == nil {
		return eris.New("member is nil")
	}

	if err := r.db.Create(member).Error; err != nil {
		logError(r.logger, logrus.Fields{
			"workspace_id": member.WorkspaceID,
			"user_id":      member.UserID,
		}, err, "creating workspace member")
		return eris.Wrap(err, "creating workspace member")
	}

	return nil
}

// Get returns the membership row for the (workspace, user) pair or nil when
// the user is not a member.
func (r *MemberRepository) Get(workspaceID, userID uuid.UUID) (*WorkspaceMember, error) {
	var member WorkspaceMember
	err := r.db.First(&member, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logError(r.logger, logrus.Fields{
			"workspace_id": workspaceID,
			"user_id":      userID,
		}, err, "fetching workspace member")
		return nil, eris.Wrap(err, "fetching workspace member")
	}

	return &member, nil
}

// ListForUser returns every membership held by the user.
func (r *MemberRepository) ListForUser(userID uuid.UUID) ([]WorkspaceMember, error) {
	var members []WorkspaceMember
	if err := r.db.Find(&members, "user_id = ?", userID).Error; err != nil {
		logError(r.logger, logrus.Fields{"user_id": userID}, err, "listing memberships")
		return nil, eris.Wrapf(err, "listing memberships for user: %s", userID)
	}

	return members, nil
}
