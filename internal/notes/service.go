package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// RepositoryPort is the persistence contract for notes.
type RepositoryPort interface {
	ListNotes(ctx context.Context) ([]Note, error)
	ListNotesBySample(ctx context.Context, sampleID uuid.UUID) ([]Note, error)
	CreateNote(ctx context.Context, sampleID uuid.UUID, content string) (*Note, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) (*Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID) error
	DeleteNotesForSample(ctx context.Context, sampleID uuid.UUID) (int64, error)
	DeleteOrphanNotes(ctx context.Context) (int64, error)
}

type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	return s.repo.ListNotes(ctx)
}

func (s *Service) ListNotesBySample(ctx context.Context, sampleID uuid.UUID) ([]Note, error) {
	return s.repo.ListNotesBySample(ctx, sampleID)
}

func (s *Service) CreateNote(ctx context.Context, sampleID uuid.UUID, content string) (*Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: note content is required", httpx.ErrValidation)
	}
	n, err := s.repo.CreateNote(ctx, sampleID, content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("note created", slog.Any("note_id", n.ID), slog.Any("sample_id", sampleID))
	return n, nil
}

func (s *Service) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) (*Note, error) {
	return s.repo.SetCompleted(ctx, id, completed)
}

func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteNote(ctx, id)
}

// DeleteNotesForSample is called when a sample is removed so its notes do
// not linger as orphans.
func (s *Service) DeleteNotesForSample(ctx context.Context, sampleID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteNotesForSample(ctx, sampleID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("notes removed with sample", slog.Any("sample_id", sampleID), slog.Int64("count", n))
	}
	return n, nil
}

// DeleteOrphanNotes sweeps notes pointing at samples that no longer exist.
// The reconcile job runs it to finish per-sample sweeps that failed midway.
func (s *Service) DeleteOrphanNotes(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteOrphanNotes(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("orphan notes removed", slog.Int64("count", n))
	}
	return n, nil
}
