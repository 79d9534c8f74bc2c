package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/labtrack/labtrack/internal/identity"
	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]UserWithRole, error)
	GetByHandle(ctx context.Context, handle string) (User, error)
	Upsert(ctx context.Context, name, email, handle string) error
	DeleteByHandle(ctx context.Context, handle string) error
}

// Service handles user account logic, including the lifecycle-event sync.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ListUsers returns every account with its role display name.
func (s *Service) ListUsers(ctx context.Context) ([]UserWithRole, error) {
	return s.repo.ListUsers(ctx)
}

// CurrentUser fetches the account backing an identity handle.
func (s *Service) CurrentUser(ctx context.Context, handle string) (User, error) {
	return s.repo.GetByHandle(ctx, handle)
}

// UpsertFromProvider applies a user.created/user.updated lifecycle event.
func (s *Service) UpsertFromProvider(ctx context.Context, user identity.ProviderUser) error {
	name := strings.TrimSpace(user.Name)
	if user.Handle == "" || user.Email == "" {
		return fmt.Errorf("users: provider payload incomplete: %w", httpx.ErrValidation)
	}
	if err := s.repo.Upsert(ctx, name, user.Email, user.Handle); err != nil {
		return err
	}
	s.logger.Info("user synced", slog.String("email", user.Email))
	return nil
}

// DeleteByHandle applies a user.deleted lifecycle event. A handle we never
// saw is logged, not failed: the delete is already satisfied.
func (s *Service) DeleteByHandle(ctx context.Context, handle string) error {
	if err := s.repo.DeleteByHandle(ctx, handle); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			s.logger.Warn("user delete for unknown handle", slog.String("handle", handle))
			return nil
		}
		return err
	}
	s.logger.Info("user removed", slog.String("handle", handle))
	return nil
}
