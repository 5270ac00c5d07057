package auth

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/apperr"
	"notebase/app/internal/db"
	"notebase/app/internal/store"
)

func TestNewGuardRequiresTokens(t *testing.T) {
	t.Parallel()

	if _, err := NewGuard(nil, nil); err == nil {
		t.Fatalf("expected error when token service is nil")
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	t.Parallel()

	guard, tokens := setupGuard(t)

	userID := uuid.New()
	token, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	got, err := guard.Authenticate("Bearer " + token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	if got != userID {
		t.Fatalf("expected user id %s, got %s", userID, got)
	}
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	guard, _ := setupGuard(t)

	_, err := guard.Authenticate("")
	if err == nil {
		t.Fatalf("expected error for empty authorization header")
	}
	if !eris.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestAuthenticateRejectsNonBearerScheme(t *testing.T) {
	t.Parallel()

	guard, _ := setupGuard(t)

	_, err := guard.Authenticate("Basic dXNlcjpwYXNz")
	if err == nil {
		t.Fatalf("expected error for non-bearer scheme")
	}
	if !eris.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestRequireMemberDeniesNonMembers(t *testing.T) {
	t.Parallel()

	guard, _ := setupGuard(t)
	st := setupStore(t)
	ctx := context.Background()

	owner := &store.User{Email: "owner@example.com", PasswordHash: "x", FullName: "Owner", IsActive: true}
	outsider := &store.User{Email: "outsider@example.com", PasswordHash: "x", FullName: "Outsider", IsActive: true}
	workspace := &store.Workspace{Name: "Team", Slug: "team"}

	err := st.Atomically(ctx, func(sess *store.Session) error {
		if err := sess.Users.Add(owner); err != nil {
			return err
		}
		if err := sess.Users.Add(outsider); err != nil {
			return err
		}
		workspace.CreatedBy = owner.ID
		if err := sess.Workspaces.Add(workspace); err != nil {
			return err
		}
		return sess.Members.Add(&store.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      owner.ID,
			Role:        store.RoleOwner,
		})
	})
	if err != nil {
		t.Fatalf("seeding store returned error: %v", err)
	}

	sess := st.Read(ctx)

	member, err := guard.RequireMember(sess, workspace.ID, owner.ID)
	if err != nil {
		t.Fatalf("RequireMember returned error for a member: %v", err)
	}
	if member.Role != store.RoleOwner {
		t.Fatalf("expected owner role, got %s", member.Role)
	}

	_, err = guard.RequireMember(sess, workspace.ID, outsider.ID)
	if err == nil {
		t.Fatalf("expected error for non-member")
	}
	if !eris.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func setupGuard(t *testing.T) (*Guard, *Tokens) {
	t.Helper()

	tokens, err := NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens returned error: %v", err)
	}

	guard, err := NewGuard(tokens, silentLogger())
	if err != nil {
		t.Fatalf("NewGuard returned error: %v", err)
	}

	return guard, tokens
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "guard.db")
	gormDB, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := db.Close(gormDB); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := silentLogger()

	if err := store.Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	st, err := store.New(gormDB, logger)
	if err != nil {
		t.Fatalf("store.New returned error: %v", err)
	}

	return st
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
