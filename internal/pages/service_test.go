package pages

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
	"notebase/app/internal/auth"
	"notebase/app/internal/db"
	"notebase/app/internal/store"
)

func TestNewServiceRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error when store is nil")
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Meeting notes",
		Type:        "page",
		Content:     store.JSON(`{"blocks":[]}`),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if page.ID == uuid.Nil {
		t.Fatalf("expected the page to receive an id")
	}

	got, err := f.service.Get(ctx, page.ID, f.userID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Title != "Meeting notes" {
		t.Fatalf("expected title preserved, got %q", got.Title)
	}

	content, err := f.store.Read(ctx).PageContents.GetByPage(page.ID)
	if err != nil {
		t.Fatalf("GetByPage returned error: %v", err)
	}
	if content == nil {
		t.Fatalf("expected a content row for the supplied content")
	}
	if content.Content.String() != `{"blocks":[]}` {
		t.Fatalf("expected content preserved, got %s", content.Content)
	}
}

func TestCreateWithoutContentSkipsContentRow(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Bare",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	content, err := f.store.Read(ctx).PageContents.GetByPage(page.ID)
	if err != nil {
		t.Fatalf("GetByPage returned error: %v", err)
	}
	if content != nil {
		t.Fatalf("expected no content row, got %#v", content)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)

	_, err := f.service.Create(context.Background(), f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Type:        "page",
	})
	if !eris.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)

	_, err := f.service.Create(context.Background(), f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Canvas",
		Type:        "canvas",
	})
	if !eris.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateDeniesNonMembers(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	outsider := f.addUser(t, "outsider@example.com")

	_, err := f.service.Create(context.Background(), outsider, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Intrusion",
		Type:        "page",
	})
	if !eris.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestCreateRejectsParentFromAnotherWorkspace(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	otherWorkspace := f.addWorkspace(t, "other", f.userID)
	foreign, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: otherWorkspace,
		Title:       "Foreign parent",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID:  f.workspaceID,
		ParentPageID: &foreign.ID,
		Title:        "Child",
		Type:         "page",
	})
	if !eris.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetArchivedPageIsNotFound(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Ephemeral",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.service.Archive(ctx, page.ID, f.userID); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	_, err = f.service.Get(ctx, page.ID, f.userID)
	if !eris.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for archived page, got %v", err)
	}
}

func TestListExcludesArchivedPages(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	kept, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Kept",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	archived, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Archived",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.service.Archive(ctx, archived.ID, f.userID); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	pages, err := f.service.List(ctx, f.workspaceID, f.userID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(pages) != 1 || pages[0].ID != kept.ID {
		t.Fatalf("expected only the kept page, got %#v", pages)
	}
}

func TestTreeReflectsHierarchy(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	root, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Handbook",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	child, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID:  f.workspaceID,
		ParentPageID: &root.ID,
		Title:        "Onboarding",
		Type:         "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	forest, err := f.service.Tree(ctx, f.workspaceID, f.userID)
	if err != nil {
		t.Fatalf("Tree returned error: %v", err)
	}

	if len(forest) != 1 || forest[0].ID != root.ID {
		t.Fatalf("expected a single root, got %#v", forest)
	}
	if len(forest[0].Children) != 1 || forest[0].Children[0].ID != child.ID {
		t.Fatalf("expected the child under the root, got %#v", forest[0].Children)
	}
}

func TestUpdateAcrossWorkspacesIsDenied(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Anchored",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	otherWorkspace := f.addWorkspace(t, "elsewhere", f.userID)

	_, err = f.service.Update(ctx, page.ID, f.userID, UpdateInput{
		WorkspaceID: otherWorkspace,
		Title:       "Moved",
	})
	if !eris.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}

	unchanged, err := f.service.Get(ctx, page.ID, f.userID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if unchanged.Title != "Anchored" {
		t.Fatalf("expected the page untouched after a denied move, got %q", unchanged.Title)
	}
}

func TestUpdateOverwritesFieldsAndUpsertsContent(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Draft",
		Type:        "page",
		Content:     store.JSON(`{"blocks":["old"]}`),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	icon := "📝"
	updated, err := f.service.Update(ctx, page.ID, f.userID, UpdateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Final",
		Icon:        &icon,
		Content:     store.JSON(`{"blocks":["new"]}`),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Title != "Final" {
		t.Fatalf("expected title Final, got %q", updated.Title)
	}
	if updated.Icon == nil || *updated.Icon != icon {
		t.Fatalf("expected icon set, got %v", updated.Icon)
	}

	content, err := f.store.Read(ctx).PageContents.GetByPage(page.ID)
	if err != nil {
		t.Fatalf("GetByPage returned error: %v", err)
	}
	if content == nil || content.Content.String() != `{"blocks":["new"]}` {
		t.Fatalf("expected content replaced, got %#v", content)
	}
}

func TestUpdateArchivedPageStillWorks(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Shelved",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.service.Archive(ctx, page.ID, f.userID); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}

	updated, err := f.service.Update(ctx, page.ID, f.userID, UpdateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Shelved v2",
	})
	if err != nil {
		t.Fatalf("Update returned error for archived page: %v", err)
	}
	if updated.Title != "Shelved v2" {
		t.Fatalf("expected archived page updated, got %q", updated.Title)
	}
}

func TestPatchContentAppliesOnlySuppliedFields(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Original",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.service.PatchContent(ctx, page.ID, f.userID, PatchInput{
		Content: store.JSON(`{"blocks":["patched"]}`),
	}); err != nil {
		t.Fatalf("PatchContent returned error: %v", err)
	}

	got, err := f.service.Get(ctx, page.ID, f.userID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Title != "Original" {
		t.Fatalf("expected the title untouched, got %q", got.Title)
	}

	content, err := f.store.Read(ctx).PageContents.GetByPage(page.ID)
	if err != nil {
		t.Fatalf("GetByPage returned error: %v", err)
	}
	if content == nil || content.Content.String() != `{"blocks":["patched"]}` {
		t.Fatalf("expected content created by the patch, got %#v", content)
	}

	title := "Renamed"
	if err := f.service.PatchContent(ctx, page.ID, f.userID, PatchInput{Title: &title}); err != nil {
		t.Fatalf("PatchContent returned error: %v", err)
	}

	got, err = f.service.Get(ctx, page.ID, f.userID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("expected title Renamed, got %q", got.Title)
	}

	content, err = f.store.Read(ctx).PageContents.GetByPage(page.ID)
	if err != nil {
		t.Fatalf("GetByPage returned error: %v", err)
	}
	if content == nil || content.Content.String() != `{"blocks":["patched"]}` {
		t.Fatalf("expected the content untouched by the title patch, got %#v", content)
	}
}

func TestArchiveIsIdempotent(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)
	ctx := context.Background()

	page, err := f.service.Create(ctx, f.userID, CreateInput{
		WorkspaceID: f.workspaceID,
		Title:       "Twice",
		Type:        "page",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.service.Archive(ctx, page.ID, f.userID); err != nil {
		t.Fatalf("first Archive returned error: %v", err)
	}
	if err := f.service.Archive(ctx, page.ID, f.userID); err != nil {
		t.Fatalf("second Archive returned error: %v", err)
	}
}

func TestArchiveMissingPageIsNotFound(t *testing.T) {
	t.Parallel()

	f := setupFixture(t)

	err := f.service.Archive(context.Background(), uuid.New(), f.userID)
	if !eris.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type fixture struct {
	service     Service
	store       *store.Store
	userID      uuid.UUID
	workspaceID uuid.UUID
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pages.db")
	gormDB, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := db.Close(gormDB); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if err := store.Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	st, err := store.New(gormDB, logger)
	if err != nil {
		t.Fatalf("store.New returned error: %v", err)
	}

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens returned error: %v", err)
	}

	guard, err := auth.NewGuard(tokens, logger)
	if err != nil {
		t.Fatalf("NewGuard returned error: %v", err)
	}

	service, err := NewService(st, guard, logger, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	f := &fixture{service: service, store: st}
	f.userID = f.addUserTo(t, st, "member@example.com")
	f.workspaceID = f.addWorkspace(t, "home", f.userID)

	return f
}

func (f *fixture) addUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	return f.addUserTo(t, f.store, email)
}

func (f *fixture) addUserTo(t *testing.T, st *store.Store, email string) uuid.UUID {
	t.Helper()

	user := &store.User{Email: email, PasswordHash: "x", FullName: "Test User", IsActive: true}
	if err := st.Atomically(context.Background(), func(sess *store.Session) error {
		return sess.Users.Add(user)
	}); err != nil {
		t.Fatalf("adding user returned error: %v", err)
	}

	return user.ID
}

func (f *fixture) addWorkspace(t *testing.T, slug string, ownerID uuid.UUID) uuid.UUID {
	t.Helper()

	workspace := &store.Workspace{Name: slug, Slug: slug, CreatedBy: ownerID}
	if err := f.store.Atomically(context.Background(), func(sess *store.Session) error {
		if err := sess.Workspaces.Add(workspace); err != nil {
			return err
		}
		return sess.Members.Add(&store.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      ownerID,
			Role:        store.RoleOwner,
		})
	}); err != nil {
		t.Fatalf("adding workspace returned error: %v", err)
	}

	return workspace.ID
}
