package auth

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/apperr"
	"notebase/app/internal/store"
)

const bearerPrefix = "Bearer "

// Guard resolves caller identity from bearer tokens and checks workspace
// membership. Every workspace- and page-scoped operation starts here; any
// doubt fails closed.
type Guard struct {
	tokens *Tokens
	logger *logrus.Logger
}

// NewGuard wires the guard with its token service.
func NewGuard(tokens *Tokens, logger *logrus.Logger) (*Guard, error) {
	if tokens == nil {
		return nil, eris.New("token service is required")
	}

	return &Guard{tokens: tokens, logger: logger}, nil
}

// Authenticate extracts the bearer token from an Authorization header value
// and returns the authenticated user id.
func (g *Guard) Authenticate(authorization string) (uuid.UUID, error) {
	header := strings.TrimSpace(authorization)
	if header == "" {
		return uuid.Nil, eris.Wrap(apperr.ErrAuthentication, "not authenticated")
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return uuid.Nil, eris.Wrap(apperr.ErrAuthentication, "authorization header must use the Bearer scheme")
	}

	userID, err := g.tokens.Subject(strings.TrimSpace(header[len(bearerPrefix):]))
	if err != nil {
		if g.logger != nil {
			g.logger.WithField("error", err.Error()).Debug("token rejected")
		}
		return uuid.Nil, err
	}

	return userID, nil
}

// RequireMember returns the caller's membership row for the workspace, or the
// permission error when none exists. Role checks beyond membership are the
// caller's responsibility.
func (g *Guard) RequireMember(sess *store.Session, workspaceID, userID uuid.UUID) (*store.WorkspaceMember, error) {
	member, err := sess.Members.Get(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		if g.logger != nil {
			g.logger.WithFields(logrus.Fields{
				"workspace_id": workspaceID,
				"user_id":      userID,
			}).Warn("workspace access denied")
		}
		return nil, eris.Wrap(apperr.ErrPermissionDenied, "not a member of this workspace")
	}

	return member, nil
}
