// Package pages implements page CRUD, content patching, archival, and the
// hierarchy tree over a workspace's page forest.
package pages

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/apperr"
	"notebase/app/internal/auth"
	"notebase/app/internal/store"
)

// CreateInput carries the fields for a new page. A nil Content skips the
// content row entirely.
type CreateInput struct {
	WorkspaceID  uuid.UUID
	ParentPageID *uuid.UUID
	Title        string
	Type         string
	Content      store.JSON
	Icon         *string
	CoverURL     *string
}

// UpdateInput carries the full-overwrite fields for an existing page. The
// workspace id must match the page's stored workspace; pages cannot move
// across workspaces.
type UpdateInput struct {
	WorkspaceID  uuid.UUID
	ParentPageID *uuid.UUID
	Title        string
	Content      store.JSON
	Icon         *string
	CoverURL     *string
}

// PatchInput carries partial updates. Nil fields are no-ops, not clears.
type PatchInput struct {
	Title   *string
	Content store.JSON
}

// Service defines page operations. Every method authorizes workspace
// membership before touching page data.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*store.Page, error)
	Get(ctx context.Context, pageID, userID uuid.UUID) (*store.Page, error)
	List(ctx context.Context, workspaceID, userID uuid.UUID) ([]store.Page, error)
	Tree(ctx context.Context, workspaceID, userID uuid.UUID) ([]TreeNode, error)
	Update(ctx context.Context, pageID, userID uuid.UUID, in UpdateInput) (*store.Page, error)
	PatchContent(ctx context.Context, pageID, userID uuid.UUID, in PatchInput) error
	Archive(ctx context.Context, pageID, userID uuid.UUID) error
}

type service struct {
	store     *store.Store
	guard     *auth.Guard
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the page service with its dependencies.
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

// Create persists a page, and its content row when content was supplied, in
// one transaction. A supplied parent must exist in the same workspace.
func (s *service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*store.Page, error) {
	if in.Title == "" {
		return nil, eris.Wrap(apperr.ErrValidation, "page title is required")
	}

	pageType, err := store.ParsePageType(in.Type)
	if err != nil {
		return nil, err
	}

	page := &store.Page{
		WorkspaceID:  in.WorkspaceID,
		ParentPageID: in.ParentPageID,
		Title:        in.Title,
		Type:         pageType,
		Icon:         in.Icon,
		CoverURL:     in.CoverURL,
		CreatedBy:    userID,
		UpdatedBy:    userID,
	}

	err = s.store.Atomically(ctx, func(sess *store.Session) error {
		if _, err := s.guard.RequireMember(sess, in.WorkspaceID, userID); err != nil {
			return err
		}

		if in.ParentPageID != nil {
			parent, err := sess.Pages.Get(*in.ParentPageID)
			if err != nil {
				return err
			}
			if parent == nil || parent.WorkspaceID != in.WorkspaceID {
				return eris.Wrap(apperr.ErrValidation, "parent page must belong to the same workspace")
			}
		}

		if err := sess.Pages.Add(page); err != nil {
			return err
		}

		if in.Content != nil {
			return sess.PageContents.Add(&store.PageContent{
				PageID:    page.ID,
				Content:   in.Content,
				Meta:      store.EmptyObject(),
				UpdatedBy: userID,
			})
		}

		return nil
	})
	if err != nil {
		if !apperr.IsDomain(err) {
			s.recordError(logrus.Fields{"workspace_id": in.WorkspaceID}, err, "creating page")
		}
		return nil, err
	}

	return page, nil
}

// Get returns the page when it exists, is not archived, and the caller is a
// member of its workspace.
func (s *service) Get(ctx context.Context, pageID, userID uuid.UUID) (*store.Page, error) {
	sess := s.store.Read(ctx)

	page, err := sess.Pages.Get(pageID)
	if err != nil {
		s.recordError(logrus.Fields{"page_id": pageID}, err, "fetching page")
		return nil, err
	}
	if page == nil || page.IsArchived {
		return nil, eris.Wrap(apperr.ErrNotFound, "page not found")
	}

	if _, err := s.guard.RequireMember(sess, page.WorkspaceID, userID); err != nil {
		return nil, err
	}

	return page, nil
}

// List returns all non-archived pages of the workspace, unordered.
func (s *service) List(ctx context.Context, workspaceID, userID uuid.UUID) ([]store.Page, error) {
	sess := s.store.Read(ctx)

	if _, err := s.guard.RequireMember(sess, workspaceID, userID); err != nil {
		return nil, err
	}

	pages, err := sess.Pages.ListActiveByWorkspace(workspaceID)
	if err != nil {
		s.recordError(logrus.Fields{"workspace_id": workspaceID}, err, "listing pages")
		return nil, err
	}

	return pages, nil
}

// Tree returns the workspace's non-archived pages as an ordered forest.
func (s *service) Tree(ctx context.Context, workspaceID, userID uuid.UUID) ([]TreeNode, error) {
	pages, err := s.List(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	return BuildTree(pages), nil
}

// Update overwrites the page's title, parent, icon, and cover, and upserts
// content when supplied. Archived pages remain updatable; only the read paths
// filter them. The supplied workspace id must match the stored one; moving a
// page across workspaces is denied.
func (s *service) Update(ctx context.Context, pageID, userID uuid.UUID, in UpdateInput) (*store.Page, error) {
	if in.Title == "" {
		return nil, eris.Wrap(apperr.ErrValidation, "page title is required")
	}

	var page *store.Page
	err := s.store.Atomically(ctx, func(sess *store.Session) error {
		var err error
		page, err = sess.Pages.Get(pageID)
		if err != nil {
			return err
		}
		if page == nil {
			return eris.Wrap(apperr.ErrNotFound, "page not found")
		}

		if page.WorkspaceID != in.WorkspaceID {
			return eris.Wrap(apperr.ErrPermissionDenied, "cannot move page across workspaces")
		}

		if _, err := s.guard.RequireMember(sess, page.WorkspaceID, userID); err != nil {
			return err
		}

		if in.ParentPageID != nil {
			parent, err := sess.Pages.Get(*in.ParentPageID)
			if err != nil {
				return err
			}
			if parent == nil || parent.WorkspaceID != page.WorkspaceID {
				return eris.Wrap(apperr.ErrValidation, "parent page must belong to the same workspace")
			}
		}

		page.Title = in.Title
		page.ParentPageID = in.ParentPageID
		page.Icon = in.Icon
		page.CoverURL = in.CoverURL
		page.UpdatedBy = userID

		if err := sess.Pages.Save(page); err != nil {
			return err
		}

		if in.Content != nil {
			return s.upsertContent(sess, page.ID, in.Content, userID)
		}

		return nil
	})
	if err != nil {
		if !apperr.IsDomain(err) {
			s.recordError(logrus.Fields{"page_id": pageID}, err, "updating page")
		}
		return nil, err
	}

	return page, nil
}

// PatchContent applies only the supplied fields. Like Update it does not
// reject archived pages.
func (s *service) PatchContent(ctx context.Context, pageID, userID uuid.UUID, in PatchInput) error {
	err := s.store.Atomically(ctx, func(sess *store.Session) error {
		page, err := sess.Pages.Get(pageID)
		if err != nil {
			return err
		}
		if page == nil {
			return eris.Wrap(apperr.ErrNotFound, "page not found")
		}

		if _, err := s.guard.RequireMember(sess, page.WorkspaceID, userID); err != nil {
			return err
		}

		if in.Title != nil {
			page.Title = *in.Title
		}
		page.UpdatedBy = userID

		if err := sess.Pages.Save(page); err != nil {
			return err
		}

		if in.Content != nil {
			return s.upsertContent(sess, page.ID, in.Content, userID)
		}

		return nil
	})
	if err != nil {
		if !apperr.IsDomain(err) {
			s.recordError(logrus.Fields{"page_id": pageID}, err, "patching page content")
		}
		return err
	}

	return nil
}

// Archive soft-deletes the page. Archiving an already-archived page succeeds
// silently; there is no un-archive transition.
func (s *service) Archive(ctx context.Context, pageID, userID uuid.UUID) error {
	err := s.store.Atomically(ctx, func(sess *store.Session) error {
		page, err := sess.Pages.Get(pageID)
		if err != nil {
			return err
		}
		if page == nil {
			return eris.Wrap(apperr.ErrNotFound, "page not found")
		}

		if _, err := s.guard.RequireMember(sess, page.WorkspaceID, userID); err != nil {
			return err
		}

		page.IsArchived = true
		page.UpdatedBy = userID

		return sess.Pages.Save(page)
	})
	if err != nil {
		if !apperr.IsDomain(err) {
			s.recordError(logrus.Fields{"page_id": pageID}, err, "archiving page")
		}
		return err
	}

	return nil
}

func (s *service) upsertContent(sess *store.Session, pageID uuid.UUID, content store.JSON, userID uuid.UUID) error {
	existing, err := sess.PageContents.GetByPage(pageID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.Content = content
		existing.UpdatedBy = userID
		return sess.PageContents.Save(existing)
	}

	return sess.PageContents.Add(&store.PageContent{
		PageID:    pageID,
		Content:   content,
		Meta:      store.EmptyObject(),
		UpdatedBy: userID,
	})
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
