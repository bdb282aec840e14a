package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateEntry(ctx context.Context, e *Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("category is required")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, e *Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("category is required")
	}
	return s.repo.Update(ctx, e)
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListActive returns the active catalog by value, the read-only form the
// reconciliation step consumes.
func (s *Service) ListActive(ctx context.Context) ([]Entry, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(items))
	for _, e := range items {
		out = append(out, *e)
	}
	return out, nil
}
