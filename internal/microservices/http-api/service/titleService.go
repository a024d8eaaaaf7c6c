package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
)

// TitleInput carries a title write. Nil fields are left unchanged on update
// and are missing on create.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string   // slug; empty string clears the category
	Genres      *[]string // slugs; replaces the whole set
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, actor permission.Actor, in TitleInput) (*models.Title, error)
	Update(ctx context.Context, actor permission.Actor, id int64, in TitleInput) (*models.Title, error)
	Delete(ctx context.Context, actor permission.Actor, id int64) error
}

type titleService struct {
	titles     *repository.TitleRepo
	categories *repository.CategoryRepo
	genres     *repository.GenreRepo
	reviews    repository.ReviewRepository
	now        func() time.Time
}

func NewTitleService(
	titles *repository.TitleRepo,
	categories *repository.CategoryRepo,
	genres *repository.GenreRepo,
	reviews repository.ReviewRepository,
) TitleService {
	return &titleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		reviews:    reviews,
		now:        time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.titles.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, apperr.FromStorage(err, "title")
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	avgs, err := s.reviews.AverageScores(ctx, ids)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	for i := range list {
		if avg, ok := avgs[list[i].ID]; ok {
			v := avg
			list[i].Rating = &v
		}
	}
	return list, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage(err, "title")
	}
	if t.Rating, err = s.reviews.AverageScore(ctx, id); err != nil {
		return nil, apperr.Internal(err)
	}
	return t, nil
}

func (s *titleService) Create(ctx context.Context, actor permission.Actor, in TitleInput) (*models.Title, error) {
	if err := permission.Authorize(permission.CatalogPolicy, actor, permission.ActionCreate, permission.Resource{}); err != nil {
		return nil, err
	}

	var fe fieldErrors
	if in.Name == nil {
		fe.add("name", "name is required")
	}
	if in.Year == nil {
		fe.add("year", "year is required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	w, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        *w.name,
		Year:        *in.Year,
		Description: in.Description,
		CategoryID:  w.categoryID,
	}
	if err := s.titles.Create(ctx, t, w.genreIDs); err != nil {
		return nil, apperr.FromStorage(err, "title")
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, actor permission.Actor, id int64, in TitleInput) (*models.Title, error) {
	if err := permission.Authorize(permission.CatalogPolicy, actor, permission.ActionUpdate, permission.Resource{}); err != nil {
		return nil, err
	}

	w, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, 4)
	if w.name != nil {
		fields["name"] = *w.name
	}
	if in.Year != nil {
		fields["year"] = *in.Year
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category_id"] = w.categoryID
	}

	if err := s.titles.Update(ctx, id, fields, w.genreIDs, in.Genres != nil); err != nil {
		return nil, apperr.FromStorage(err, "title")
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, actor permission.Actor, id int64) error {
	if err := permission.Authorize(permission.CatalogPolicy, actor, permission.ActionDelete, permission.Resource{}); err != nil {
		return err
	}
	return apperr.FromStorage(s.titles.Delete(ctx, id), "title")
}

type titleWrite struct {
	name       *string
	categoryID *int64
	genreIDs   []int64
}

// resolve validates in and turns category and genre slugs into ids.
func (s *titleService) resolve(ctx context.Context, in TitleInput) (*titleWrite, error) {
	w := &titleWrite{}
	var fe fieldErrors

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		checkName(&fe, "name", name)
		w.name = &name
	}
	if in.Year != nil {
		if current := s.now().Year(); *in.Year > current {
			fe.add("year", fmt.Sprintf("year cannot be later than %d", current))
		}
	}

	if in.Category != nil && *in.Category != "" {
		c, err := s.categories.GetBySlug(ctx, *in.Category)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fe.add("category", fmt.Sprintf("category %q does not exist", *in.Category))
		case err != nil:
			return nil, apperr.Internal(err)
		default:
			w.categoryID = &c.ID
		}
	}

	if in.Genres != nil {
		found, err := s.genres.FindBySlugs(ctx, *in.Genres)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		bySlug := make(map[string]int64, len(found))
		for _, g := range found {
			bySlug[g.Slug] = g.ID
		}
		var missing []string
		for _, slug := range *in.Genres {
			id, ok := bySlug[slug]
			if !ok {
				missing = append(missing, slug)
				continue
			}
			w.genreIDs = append(w.genreIDs, id)
		}
		if len(missing) > 0 {
			fe.add("genre", fmt.Sprintf("unknown genre: %s", strings.Join(missing, ", ")))
		}
	}

	if err := fe.err(); err != nil {
		return nil, err
	}
	return w, nil
}
