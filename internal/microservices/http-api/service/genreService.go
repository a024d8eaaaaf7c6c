package service

import (
	"context"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	Create(ctx context.Context, actor permission.Actor, name, slug string) (*models.Genre, error)
	Delete(ctx context.Context, actor permission.Actor, slug string) error
}

type genreService struct {
	repo *repository.GenreRepo
}

func NewGenreService(r *repository.GenreRepo) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, 0, apperr.FromStorage(err, "genre")
	}
	return list, total, nil
}

func (s *genreService) Create(ctx context.Context, actor permission.Actor, name, slug string) (*models.Genre, error) {
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
		return nil, apperr.FieldInvalid("slug", "genre with this slug already exists")
	}

	g := &models.Genre{Name: name, Slug: slug}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, apperr.FromStorage(err, "genre")
	}
	return g, nil
}

func (s *genreService) Delete(ctx context.Context, actor permission.Actor, slug string) error {
	if err := permission.Authorize(permission.CatalogPolicy, actor, permission.ActionDelete, permission.Resource{}); err != nil {
		return err
	}
	return apperr.FromStorage(s.repo.Delete(ctx, slug), "genre")
}
