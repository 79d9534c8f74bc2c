package samples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/analyses"
	"github.com/labtrack/labtrack/internal/platform/httpx"
	"github.com/labtrack/labtrack/internal/shared"
)

// RepositoryPort is the persistence contract for samples.
type RepositoryPort interface {
	ListSamples(ctx context.Context) ([]View, error)
	ListSamplesByClient(ctx context.Context, clientID uuid.UUID) ([]View, error)
	GetSample(ctx context.Context, id uuid.UUID) (*View, error)
	CreateSample(ctx context.Context, s Sample) (*View, error)
	UpdateSample(ctx context.Context, id uuid.UUID, upd Update) (*View, error)
	DeleteSample(ctx context.Context, id uuid.UUID) error
}

// TemplatePort resolves the analysis template a new sample is registered
// against.
type TemplatePort interface {
	GetAnalysisByName(ctx context.Context, name string) (*analyses.Analysis, error)
}

// NotesPort removes the notes attached to a deleted sample.
type NotesPort interface {
	DeleteNotesForSample(ctx context.Context, sampleID uuid.UUID) (int64, error)
}

type Service struct {
	repo      RepositoryPort
	templates TemplatePort
	notes     NotesPort
	audit     *shared.AuditLogger
	logger    *slog.Logger
}

func NewService(repo RepositoryPort, templates TemplatePort, notes NotesPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, templates: templates, notes: notes, audit: audit, logger: logger}
}

func (s *Service) ListSamples(ctx context.Context) ([]View, error) {
	return s.repo.ListSamples(ctx)
}

func (s *Service) ListSamplesByClient(ctx context.Context, clientID uuid.UUID) ([]View, error) {
	return s.repo.ListSamplesByClient(ctx, clientID)
}

func (s *Service) GetSample(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.repo.GetSample(ctx, id)
}

// RegisterSample creates a sample whose result sheet is seeded from the
// named analysis template, one empty row per template field.
func (s *Service) RegisterSample(ctx context.Context, actor string, clientID, statusID uuid.UUID, analysisName string) (*View, error) {
	tpl, err := s.templates.GetAnalysisByName(ctx, analysisName)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown analysis %q", httpx.ErrValidation, analysisName)
	}
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(tpl.Fields))
	for _, f := range tpl.Fields {
		results = append(results, Result{
			Name:        f.Name,
			Measurement: f.Measurement,
			Standard:    f.ReferenceValue,
		})
	}

	view, err := s.repo.CreateSample(ctx, Sample{
		ClientID:     clientID,
		StatusID:     statusID,
		AnalysisName: tpl.Name,
		Results:      results,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "sample.register", view.ID.String())
	s.logger.Info("sample registered", slog.Any("sample_id", view.ID), slog.String("analysis", view.AnalysisName))
	return view, nil
}

// UpdateSample applies a status change or edited result rows. Edited rows
// must keep the sheet's shape: same row count, same parameter names.
func (s *Service) UpdateSample(ctx context.Context, actor string, id uuid.UUID, upd Update) (*View, error) {
	if upd.Results != nil {
		current, err := s.repo.GetSample(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := matchSheet(current.Results, *upd.Results); err != nil {
			return nil, err
		}
	}
	view, err := s.repo.UpdateSample(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "sample.update", id.String())
	return view, nil
}

// DeleteSample removes the sample and then its notes. The note sweep runs
// after the sample row is gone; a failure there leaves orphans for the
// reconciliation job rather than resurrecting the sample.
func (s *Service) DeleteSample(ctx context.Context, actor string, id uuid.UUID) error {
	if err := s.repo.DeleteSample(ctx, id); err != nil {
		return err
	}
	if s.notes != nil {
		if _, err := s.notes.DeleteNotesForSample(ctx, id); err != nil {
			s.logger.Warn("note cleanup failed", slog.Any("sample_id", id), slog.Any("error", err))
		}
	}
	s.record(ctx, actor, "sample.delete", id.String())
	s.logger.Info("sample deleted", slog.Any("sample_id", id))
	return nil
}

func matchSheet(current, proposed []Result) error {
	if len(proposed) != len(current) {
		return fmt.Errorf("%w: result sheet must keep %d rows", httpx.ErrValidation, len(current))
	}
	for i, row := range proposed {
		if row.Name != current[i].Name {
			return fmt.Errorf("%w: result row %d must keep parameter %q", httpx.ErrValidation, i, current[i].Name)
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor, action, entityID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "sample",
		EntityID: entityID,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
