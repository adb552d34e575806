package category

import (
	"context"
	"strings"

	"pantry-be/internal/logger"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Category, error)
	List(ctx context.Context, search string) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	c := &Category{
		ID:   uuid.NewString(),
		Name: input.Name,
		Slug: slug.Make(input.Name),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("category created",
		zap.String("layer", "service"),
		zap.String("category_id", c.ID),
		zap.String("slug", c.Slug),
	)
	return c, nil
}

func (s *service) List(ctx context.Context, search string) ([]*Category, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
