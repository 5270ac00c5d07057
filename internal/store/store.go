package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store is the persistence gateway. Each request-scoped operation obtains a
// Session (transactional for writes, plain for reads) bundling the per-entity
// repositories. Nothing outside this package touches gorm queries.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Session exposes the per-entity repositories bound to one database handle.
// Sessions produced by Atomically share a transaction; an error from the
// callback rolls the whole unit of work back.
type Session struct {
	Users        *UserRepository
	Workspaces   *WorkspaceRepository
	Members      *MemberRepository
	Pages        *PageRepository
	PageContents *PageContentRepository
}

// New constructs the store.
func New(db *gorm.DB, logger *logrus.Logger) (*Store, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &Store{db: db, logger: logger}, nil
}

// Migrate applies the schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "store.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying schema")
	}

	err := db.WithContext(ctx).AutoMigrate(
		&User{},
		&Workspace{},
		&WorkspaceMember{},
		&Page{},
		&PageContent{},
	)
	if err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("schema migration failed")
		}
		return eris.Wrap(err, "auto migrating schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("schema migration complete")
	}

	return nil
}

// Atomically runs fn inside a single transaction. A nil return commits, any
// error rolls back and is propagated unmodified.
func (s *Store) Atomically(ctx context.Context, fn func(sess *Session) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.newSession(tx))
	})
}

// Read yields a non-transactional session for read-only operations.
func (s *Store) Read(ctx context.Context) *Session {
	return s.newSession(s.db.WithContext(ctx))
}

func (s *Store) newSession(db *gorm.DB) *Session {
	return &Session{
		Users:        &UserRepository{db: db, logger: s.logger},
		Workspaces:   &WorkspaceRepository{db: db, logger: s.logger},
		Members:      &MemberRepository{db: db, logger: s.logger},
		Pages:        &PageRepository{db: db, logger: s.logger},
		PageContents: &PageContentRepository{db: db, logger: s.logger},
	}
}

// IsDuplicate reports whether err stems from a unique-constraint violation,
// such as a duplicate email, slug, or membership pair.
func IsDuplicate(err error) bool {
	return eris.Is(err, gorm.ErrDuplicatedKey)
}

func logError(logger *logrus.Logger, fields logrus.Fields, err error, message string) {
	if logger == nil {
		return
	}

	entry := logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
