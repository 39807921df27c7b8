package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scholaris/scholaris/internal/access"
	"github.com/scholaris/scholaris/internal/shared"
)

// Service wraps sign-in and sign-out rules.
type Service struct {
	auditor shared.Auditor
	logger  *slog.Logger
}

// NewService constructs a new Service. auditor may be nil.
func NewService(auditor shared.Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{auditor: auditor, logger: logger}
}

// Login validates identity and role and stores them on sess. On failure the
// session keeps its previous identity.
func (s *Service) Login(ctx context.Context, sess *shared.Session, identity, role string) (access.Session, error) {
	if sess == nil {
		return access.Anonymous, shared.ErrSessionMissing
	}
	next, err := access.NewSession(identity, role)
	if err != nil {
		return access.Anonymous, fmt.Errorf("%w: %w", ErrInvalidLogin, err)
	}
	if err := sess.SignIn(next); err != nil {
		return access.Anonymous, fmt.Errorf("%w: %w", ErrInvalidLogin, err)
	}
	s.record(ctx, next, "auth.login")
	return next, nil
}

// Logout clears the identity held by sess.
func (s *Service) Logout(ctx context.Context, sess *shared.Session) {
	if sess == nil {
		return
	}
	previous := sess.Identity()
	sess.SignOut()
	if previous.Authenticated {
		s.record(ctx, previous, "auth.logout")
	}
}

func (s *Service) record(ctx context.Context, identity access.Session, action string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID: identity.UserID,
		Role:    identity.Role.String(),
		Action:  action,
		Path:    "/auth",
	})
	if err != nil {
		s.logger.Warn("record auth audit", slog.String("action", action), slog.Any("error", err))
	}
}
