// Package workspaces implements workspace creation, listing, and deletion.
package workspaces

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/apperr"
	"notebase/app/internal/auth"
	"notebase/app/internal/store"
)

// Service defines workspace operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, name, slugValue string) (*store.Workspace, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]store.Workspace, error)
	Delete(ctx context.Context, workspaceID, userID uuid.UUID) error
}

type service struct {
	store     *store.Store
	guard     *auth.Guard
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the workspace service with its dependencies.
func NewService(st *store.Store, guard *auth.Guard, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if st == nil {
		return nil, eris.New("store is required")
	}
	if guard == nil {
		return nil, eris.New("guard is required")
	}

	return &service{
		store:     st,
		guard:     guard,
		logger:    logger,
		sentryHub: hub,
	}, nil
}

// Create persists a workspace and its owner membership atomically. The slug
// is derived from the name when absent; a duplicate slug rolls the whole unit
// back and surfaces as a conflict.
func (s *service) Create(ctx context.Context, userID uuid.UUID, name, slugValue string) (*store.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, eris.Wrap(apperr.ErrValidation, "workspace name is required")
	}

	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		slugValue = slug.Make(name)
	}

	workspace := &store.Workspace{
		Name:      name,
		Slug:      slugValue,
		CreatedBy: userID,
	}

	err := s.store.Atomically(ctx, func(sess *store.Session) error {
		if err := sess.Workspaces.Add(workspace); err != nil {
			return err
		}

		return sess.Members.Add(&store.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        store.RoleOwner,
		})
	})
	if err != nil {
		if store.IsDuplicate(err) {
			return nil, eris.Wrap(apperr.ErrConflict, "slug already exists")
		}
		s.recordError(logrus.Fields{"slug": slugValue}, err, "creating workspace")
		return nil, err
	}

	return workspace, nil
}

// ListMine resolves the caller's memberships to their workspaces. Simple
// per-membership fetches are fine at this scale.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]store.Workspace, error) {
	sess := s.store.Read(ctx)

	memberships, err := sess.Members.ListForUser(userID)
	if err != nil {
		s.recordError(logrus.Fields{"user_id": userID}, err, "listing memberships")
		return nil, err
	}

	workspaces := make([]store.Workspace, 0, len(memberships))
	for _, membership := range memberships {
		workspace, err := sess.Workspaces.Get(membership.WorkspaceID)
		if err != nil {
			s.recordError(logrus.Fields{"workspace_id": membership.WorkspaceID}, err, "resolving membership workspace")
			return nil, err
		}
		if workspace != nil {
			workspaces = append(workspaces, *workspace)
		}
	}

	return workspaces, nil
}

// Delete removes the workspace. Only a member holding the owner role may
// delete; members and pages disappear with the row via foreign-key cascades.
func (s *service) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	err := s.store.Atomically(ctx, func(sess *store.Session) error {
		workspace, err := sess.Workspaces.Get(workspaceID)
		if err != nil {
			return err
		}
		if workspace == nil {
			return eris.Wrap(apperr.ErrNotFound, "workspace not found")
		}

		member, err := s.guard.RequireMember(sess, workspaceID, userID)
		if err != nil {
			return err
		}
		if member.Role != store.RoleOwner {
			return eris.Wrap(apperr.ErrPermissionDenied, "only the workspace owner can delete it")
		}

		return sess.Workspaces.Delete(workspaceID)
	})
	if err != nil {
		if !apperr.IsDomain(err) {
			s.recordError(logrus.Fields{"workspace_id": workspaceID}, err, "deleting workspace")
		}
		return err
	}

	return nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
