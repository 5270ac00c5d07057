package http

import (
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/pages"
	"notebase/app/internal/store"
)

type createPageInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		WorkspaceID  uuid.UUID       `json:"workspace_id"`
		ParentPageID *uuid.UUID      `json:"parent_page_id,omitempty"`
		Title        string          `json:"title"`
		Type         string          `json:"type,omitempty" enum:"page,database" default:"page"`
		Content      json.RawMessage `json:"content,omitempty"`
		Icon         *string         `json:"icon,omitempty"`
		CoverURL     *string         `json:"cover_url,omitempty"`
	}
}

type pageResponse struct {
	Body store.Page
}

type pageListInput struct {
	Authorization string    `header:"Authorization"`
	WorkspaceID   uuid.UUID `path:"workspace_id"`
}

type pageListResponse struct {
	Body []store.Page
}

type pageTreeResponse struct {
	Body []pages.TreeNode
}

type pageInput struct {
	Authorization string    `header:"Authorization"`
	PageID        uuid.UUID `path:"page_id"`
}

type updatePageInput struct {
	Authorization string    `header:"Authorization"`
	PageID        uuid.UUID `path:"page_id"`
	Body          struct {
		WorkspaceID  uuid.UUID       `json:"workspace_id"`
		ParentPageID *uuid.UUID      `json:"parent_page_id,omitempty"`
		Title        string          `json:"title"`
		Content      json.RawMessage `json:"content,omitempty"`
		Icon         *string         `json:"icon,omitempty"`
		CoverURL     *string         `json:"cover_url,omitempty"`
	}
}

type patchContentInput struct {
	Authorization string    `header:"Authorization"`
	PageID        uuid.UUID `path:"page_id"`
	Body          struct {
		Title   *string         `json:"title,omitempty"`
		Content json.RawMessage `json:"content,omitempty"`
	}
}

// suppliedContent normalizes a request's content field. Absent and explicit
// null both mean "no content write", never a literal null document.
func suppliedContent(raw json.RawMessage) store.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return store.JSON(raw)
}

func (s *Server) registerPageRoutes() {
	huma.Post(s.api, "/pages", s.createPageHandler, func(op *huma.Operation) {
		op.Summary = "Create a page"
	})
	huma.Get(s.api, "/pages/workspace/{workspace_id}", s.listPagesHandler, func(op *huma.Operation) {
		op.Summary = "List a workspace's pages"
	})
	huma.Get(s.api, "/pages/workspace/{workspace_id}/tree", s.pageTreeHandler, func(op *huma.Operation) {
		op.Summary = "Fetch a workspace's page hierarchy"
	})
	huma.Get(s.api, "/pages/{page_id}", s.getPageHandler, func(op *huma.Operation) {
		op.Summary = "Fetch a page"
	})
	huma.Put(s.api, "/pages/{page_id}", s.updatePageHandler, func(op *huma.Operation) {
		op.Summary = "Update a page"
	})
	huma.Patch(s.api, "/pages/{page_id}/content", s.patchContentHandler, func(op *huma.Operation) {
		op.Summary = "Patch a page's title or content"
	})
	huma.Delete(s.api, "/pages/{page_id}", s.archivePageHandler, func(op *huma.Operation) {
		op.Summary = "Archive a page"
	})
}

func (s *Server) createPageHandler(ctx context.Context, input *createPageInput) (*pageResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	pageType := input.Body.Type
	if pageType == "" {
		pageType = string(store.PageTypePage)
	}

	page, err := s.pages.Create(ctx, userID, pages.CreateInput{
		WorkspaceID:  input.Body.WorkspaceID,
		ParentPageID: input.Body.ParentPageID,
		Title:        input.Body.Title,
		Type:         pageType,
		Content:      suppliedContent(input.Body.Content),
		Icon:         input.Body.Icon,
		CoverURL:     input.Body.CoverURL,
	})
	if err != nil {
		return nil, s.domainError(ctx, err, "creating page", logrus.Fields{"workspace_id": input.Body.WorkspaceID})
	}

	return &pageResponse{Body: *page}, nil
}

func (s *Server) listPagesHandler(ctx context.Context, input *pageListInput) (*pageListResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	pageList, err := s.pages.List(ctx, input.WorkspaceID, userID)
	if err != nil {
		return nil, s.domainError(ctx, err, "listing pages", logrus.Fields{"workspace_id": input.WorkspaceID})
	}

	return &pageListResponse{Body: pageList}, nil
}

func (s *Server) pageTreeHandler(ctx context.Context, input *pageListInput) (*pageTreeResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	tree, err := s.pages.Tree(ctx, input.WorkspaceID, userID)
	if err != nil {
		return nil, s.domainError(ctx, err, "building page tree", logrus.Fields{"workspace_id": input.WorkspaceID})
	}

	return &pageTreeResponse{Body: tree}, nil
}

func (s *Server) getPageHandler(ctx context.Context, input *pageInput) (*pageResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	page, err := s.pages.Get(ctx, input.PageID, userID)
	if err != nil {
		return nil, s.domainError(ctx, err, "fetching page", logrus.Fields{"page_id": input.PageID})
	}

	return &pageResponse{Body: *page}, nil
}

func (s *Server) updatePageHandler(ctx context.Context, input *updatePageInput) (*pageResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	page, err := s.pages.Update(ctx, input.PageID, userID, pages.UpdateInput{
		WorkspaceID:  input.Body.WorkspaceID,
		ParentPageID: input.Body.ParentPageID,
		Title:        input.Body.Title,
		Content:      suppliedContent(input.Body.Content),
		Icon:         input.Body.Icon,
		CoverURL:     input.Body.CoverURL,
	})
	if err != nil {
		return nil, s.domainError(ctx, err, "updating page", logrus.Fields{"page_id": input.PageID})
	}

	return &pageResponse{Body: *page}, nil
}

func (s *Server) patchContentHandler(ctx context.Context, input *patchContentInput) (*ackResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	err = s.pages.PatchContent(ctx, input.PageID, userID, pages.PatchInput{
		Title:   input.Body.Title,
		Content: suppliedContent(input.Body.Content),
	})
	if err != nil {
		return nil, s.domainError(ctx, err, "patching page content", logrus.Fields{"page_id": input.PageID})
	}

	return newAckResponse("updated"), nil
}

func (s *Server) archivePageHandler(ctx context.Context, input *pageInput) (*ackResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	if err := s.pages.Archive(ctx, input.PageID, userID); err != nil {
		return nil, s.domainError(ctx, err, "archiving page", logrus.Fields{"page_id": input.PageID})
	}

	return newAckResponse("archived"), nil
}
