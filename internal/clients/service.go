package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// RepositoryPort defines data access methods for clients.
type RepositoryPort interface {
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (Client, error)
	CreateClient(ctx context.Context, fullName string, email, phone *string) (Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, upd Update) (Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// Service handles client business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListClients returns all clients, newest first.
func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return s.repo.ListClients(ctx)
}

// GetClient fetches one client.
func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (Client, error) {
	return s.repo.GetClient(ctx, id)
}

// CreateClient registers a new client.
func (s *Service) CreateClient(ctx context.Context, fullName string, email, phone *string) (Client, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Client{}, fmt.Errorf("clients: full name required: %w", httpx.ErrValidation)
	}
	return s.repo.CreateClient(ctx, fullName, email, phone)
}

// UpdateClient patches a client.
func (s *Service) UpdateClient(ctx context.Context, id uuid.UUID, upd Update) (Client, error) {
	if upd.FullName != nil {
		trimmed := strings.TrimSpace(*upd.FullName)
		if trimmed == "" {
			return Client{}, fmt.Errorf("clients: full name cannot be blank: %w", httpx.ErrValidation)
		}
		upd.FullName = &trimmed
	}
	return s.repo.UpdateClient(ctx, id, upd)
}

// DeleteClient removes a client.
func (s *Service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, id)
}
