package statuses

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// RepositoryPort is the persistence contract for statuses.
type RepositoryPort interface {
	ListStatuses(ctx context.Context) ([]Status, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*Status, error)
	CreateStatus(ctx context.Context, name, color string) (*Status, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, upd Update) (*Status, error)
	DeleteStatus(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListStatuses(ctx context.Context) ([]Status, error) {
	return s.repo.ListStatuses(ctx)
}

func (s *Service) GetStatus(ctx context.Context, id uuid.UUID) (*Status, error) {
	return s.repo.GetStatus(ctx, id)
}

func (s *Service) CreateStatus(ctx context.Context, name, color string) (*Status, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: status name is required", httpx.ErrValidation)
	}
	if !hexColor.MatchString(color) {
		return nil, fmt.Errorf("%w: color must be a #RRGGBB value", httpx.ErrValidation)
	}
	st, err := s.repo.CreateStatus(ctx, name, color)
	if err != nil {
		return nil, err
	}
	s.logger.Info("status created", slog.Any("status_id", st.ID), slog.String("name", st.Name))
	return st, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, upd Update) (*Status, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: status name is required", httpx.ErrValidation)
		}
		upd.Name = &trimmed
	}
	if upd.Color != nil && !hexColor.MatchString(*upd.Color) {
		return nil, fmt.Errorf("%w: color must be a #RRGGBB value", httpx.ErrValidation)
	}
	return s.repo.UpdateStatus(ctx, id, upd)
}

func (s *Service) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteStatus(ctx, id); err != nil {
		return err
	}
	s.logger.Info("status deleted", slog.Any("status_id", id))
	return nil
}
