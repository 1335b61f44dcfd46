package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mousegear/store/internal/catalog/domain"
)

var ErrInvalidInput = errors.New("invalid product input")

// Service covers the product catalog CRUD surface.
type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

type CreateInput struct {
	Name        string
	Price       int64
	Quantity    int
	Brand       string
	Category    domain.Category
	Description string
	ImgURL      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" || in.Price < 0 || in.Quantity < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	if in.Category == "" {
		in.Category = domain.CategoryMouse
	}
	if !domain.ValidCategory(in.Category) {
		return domain.Product{}, domain.ErrInvalidCategory
	}
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Brand:       in.Brand,
		Category:    in.Category,
		Description: in.Description,
		ImgURL:      in.ImgURL,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Search(ctx context.Context, partial string) ([]domain.Product, error) {
	if strings.TrimSpace(partial) == "" {
		return nil, nil
	}
	return s.repo.SearchByName(ctx, partial)
}

func (s *Service) FilterByCategory(ctx context.Context, c domain.Category) ([]domain.Product, error) {
	if !domain.ValidCategory(c) {
		return nil, domain.ErrInvalidCategory
	}
	return s.repo.FilterByCategory(ctx, c)
}

func (s *Service) Update(ctx context.Context, id string, p domain.PartialUpdate) (domain.Product, error) {
	if p.Category != nil && !domain.ValidCategory(*p.Category) {
		return domain.Product{}, domain.ErrInvalidCategory
	}
	if p.Price != nil && *p.Price < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.repo.MarkDeleted(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Restore(ctx, id)
}
