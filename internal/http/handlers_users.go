package http

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"notebase/app/internal/store"
)

type registerInput struct {
	Body struct {
		Email    string `json:"email" doc:"Email address, unique per account"`
		Password string `json:"password" doc:"Plaintext password, stored only as a hash"`
		FullName string `json:"full_name" doc:"Display name"`
	}
}

type userResponse struct {
	Body store.User
}

type loginInput struct {
	Body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
}

type tokenResponse struct {
	Body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
}

func (s *Server) registerUserRoutes() {
	huma.Post(s.api, "/users/register", s.registerHandler, func(op *huma.Operation) {
		op.Summary = "Register a new account"
	})
	huma.Post(s.api, "/users/login", s.loginHandler, func(op *huma.Operation) {
		op.Summary = "Exchange credentials for a bearer token"
	})
}

func (s *Server) registerHandler(ctx context.Context, input *registerInput) (*userResponse, error) {
	user, err := s.users.Register(ctx, input.Body.Email, input.Body.Password, input.Body.FullName)
	if err != nil {
		return nil, s.domainError(ctx, err, "registering user", nil)
	}

	return &userResponse{Body: *user}, nil
}

func (s *Server) loginHandler(ctx context.Context, input *loginInput) (*tokenResponse, error) {
	token, err := s.users.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, s.domainError(ctx, err, "logging in", nil)
	}

	resp := &tokenResponse{}
	resp.Body.AccessToken = token
	resp.Body.TokenType = "bearer"

	return resp, nil
}
