package analyses

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// RepositoryPort is the persistence contract for analysis templates.
type RepositoryPort interface {
	ListAnalyses(ctx context.Context) ([]Analysis, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error)
	GetAnalysisByName(ctx context.Context, name string) (*Analysis, error)
	CreateAnalysis(ctx context.Context, a Analysis) (*Analysis, error)
	UpdateAnalysis(ctx context.Context, id uuid.UUID, upd Update) (*Analysis, error)
	DeleteAnalysis(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListAnalyses(ctx context.Context) ([]Analysis, error) {
	return s.repo.ListAnalyses(ctx)
}

func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	return s.repo.GetAnalysis(ctx, id)
}

func (s *Service) GetAnalysisByName(ctx context.Context, name string) (*Analysis, error) {
	return s.repo.GetAnalysisByName(ctx, name)
}

func (s *Service) CreateAnalysis(ctx context.Context, a Analysis) (*Analysis, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return nil, fmt.Errorf("%w: analysis name is required", httpx.ErrValidation)
	}
	if !ValidType(a.Type) {
		return nil, fmt.Errorf("%w: unknown analysis type %q", httpx.ErrValidation, a.Type)
	}
	if err := validateFields(a.Fields); err != nil {
		return nil, err
	}
	if a.Fields == nil {
		a.Fields = []Field{}
	}
	created, err := s.repo.CreateAnalysis(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Info("analysis created", slog.Any("analysis_id", created.ID), slog.String("name", created.Name), slog.String("type", created.Type))
	return created, nil
}

func (s *Service) UpdateAnalysis(ctx context.Context, id uuid.UUID, upd Update) (*Analysis, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: analysis name is required", httpx.ErrValidation)
		}
		upd.Name = &trimmed
	}
	if upd.Type != nil && !ValidType(*upd.Type) {
		return nil, fmt.Errorf("%w: unknown analysis type %q", httpx.ErrValidation, *upd.Type)
	}
	if upd.Fields != nil {
		if err := validateFields(*upd.Fields); err != nil {
			return nil, err
		}
	}
	return s.repo.UpdateAnalysis(ctx, id, upd)
}

func (s *Service) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAnalysis(ctx, id); err != nil {
		return err
	}
	s.logger.Info("analysis deleted", slog.Any("analysis_id", id))
	return nil
}

func validateFields(fields []Field) error {
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: field %d needs a name", httpx.ErrValidation, i)
		}
	}
	return nil
}
