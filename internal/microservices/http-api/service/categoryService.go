package service

import (
	"context"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	Create(ctx context.Context, actor permission.Actor, name, slug string) (*models.Category, error)
	Delete(ctx context.Context, actor permission.Actor, slug string) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(r *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, 0, apperr.FromStorage(err, "category")
	}
	return list, total, nil
}

func (s *categoryService) Create(ctx context.Context, actor permission.Actor, name, slug string) (*models.Category, error) {
	if err := permission.Authorize(permission.CatalogPolicy, actor, permission.ActionCreate, permission.Resource{}); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	var fe fieldErrors
	checkName(&fe, "name", name)
	checkSlug(&fe, slug)
	if err := fe.err(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.FieldInvalid("slug", "category with this slug already exists")
	}

	c := &models.Category{Name: name, Slug: slug}
	// the unique index still decides when two creates race past the check
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.FromStorage(err, "category")
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, actor permission.Actor, slug string) error {
	if err := permission.Authorize(permission.CatalogPolicy, actor, permission.ActionDelete, permission.Resource{}); err != nil {
		return err
	}
	return apperr.FromStorage(s.repo.Delete(ctx, slug), "category")
}
