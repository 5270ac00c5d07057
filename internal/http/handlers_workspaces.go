package http

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/store"
)

type createWorkspaceInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Name string `json:"name"`
		Slug string `json:"slug,omitempty" doc:"Derived from the name when omitted"`
	}
}

type workspaceResponse struct {
	Body store.Workspace
}

type listWorkspacesInput struct {
	Authorization string `header:"Authorization"`
}

type workspaceListResponse struct {
	Body []store.Workspace
}

type deleteWorkspaceInput struct {
	Authorization string    `header:"Authorization"`
	WorkspaceID   uuid.UUID `path:"workspace_id"`
}

type ackResponse struct {
	Body struct {
		Status string `json:"status"`
	}
}

func newAckResponse(status string) *ackResponse {
	resp := &ackResponse{}
	resp.Body.Status = status
	return resp
}

func (s *Server) registerWorkspaceRoutes() {
	huma.Post(s.api, "/workspaces", s.createWorkspaceHandler, func(op *huma.Operation) {
		op.Summary = "Create a workspace"
	})
	huma.Get(s.api, "/workspaces/mine", s.listWorkspacesHandler, func(op *huma.Operation) {
		op.Summary = "List workspaces the caller belongs to"
	})
	huma.Delete(s.api, "/workspaces/{workspace_id}", s.deleteWorkspaceHandler, func(op *huma.Operation) {
		op.Summary = "Delete a workspace (owner only)"
	})
}

func (s *Server) createWorkspaceHandler(ctx context.Context, input *createWorkspaceInput) (*workspaceResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	workspace, err := s.workspaces.Create(ctx, userID, input.Body.Name, input.Body.Slug)
	if err != nil {
		return nil, s.domainError(ctx, err, "creating workspace", logrus.Fields{"user_id": userID})
	}

	return &workspaceResponse{Body: *workspace}, nil
}

func (s *Server) listWorkspacesHandler(ctx context.Context, input *listWorkspacesInput) (*workspaceListResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	workspaces, err := s.workspaces.ListMine(ctx, userID)
	if err != nil {
		return nil, s.domainError(ctx, err, "listing workspaces", logrus.Fields{"user_id": userID})
	}

	return &workspaceListResponse{Body: workspaces}, nil
}

func (s *Server) deleteWorkspaceHandler(ctx context.Context, input *deleteWorkspaceInput) (*ackResponse, error) {
	userID, err := s.guard.Authenticate(input.Authorization)
	if err != nil {
		return nil, s.domainError(ctx, err, "authenticating", nil)
	}

	if err := s.workspaces.Delete(ctx, input.WorkspaceID, userID); err != nil {
		return nil, s.domainError(ctx, err, "deleting workspace", logrus.Fields{"workspace_id": input.WorkspaceID})
	}

	return newAckResponse("deleted"), nil
}
