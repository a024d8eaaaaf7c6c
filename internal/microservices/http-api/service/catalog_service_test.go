package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/testutil"
)

type catalog struct {
	db         *gorm.DB
	categories CategoryService
	genres     GenreService
	titles     *titleService
	reviews    ReviewService
	admin      permission.Actor
	user       permission.Actor
}

func newCatalog(t *testing.T) *catalog {
	t.Helper()
	db := testutil.NewDB(t)
	titleRepo := repository.NewTitleRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	reviewRepo := repository.NewReviewRepository(db)

	return &catalog{
		db:         db,
		categories: NewCategoryService(categoryRepo),
		genres:     NewGenreService(genreRepo),
		titles:     NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo).(*titleService),
		reviews:    NewReviewService(reviewRepo, titleRepo),
		admin:      testutil.ActorFor(testutil.CreateUser(t, db, "admin", permission.RoleAdmin)),
		user:       testutil.ActorFor(testutil.CreateUser(t, db, "ann", permission.RoleUser)),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCategoryService_DuplicateSlug(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.categories.Create(ctx, c.admin, "Film", "film")
	require.NoError(t, err)

	_, err = c.categories.Create(ctx, c.admin, "Another film", "film")
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, ok := apperr.As(err).Field("slug")
	assert.True(t, ok)
}

func TestCategoryService_Validation(t *testing.T) {
	c := newCatalog(t)

	_, err := c.categories.Create(context.Background(), c.admin, " ", "not a slug!")
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae := apperr.As(err)
	_, hasName := ae.Field("name")
	_, hasSlug := ae.Field("slug")
	assert.True(t, hasName)
	assert.True(t, hasSlug)
}

func TestCategoryService_AdminGate(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.categories.Create(ctx, permission.Anonymous(), "Film", "film")
	require.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus())

	_, err = c.categories.Create(ctx, c.user, "Film", "film")
	require.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus())

	assert.ErrorIs(t, c.categories.Delete(ctx, c.user, "film"), apperr.ErrPermission)
	assert.ErrorIs(t, c.categories.Delete(ctx, c.admin, "film"), apperr.ErrNotFound)
}

func TestGenreService_SlugNamespaceIsSeparate(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.categories.Create(ctx, c.admin, "Drama", "drama")
	require.NoError(t, err)
	_, err = c.genres.Create(ctx, c.admin, "Drama", "drama")
	require.NoError(t, err)

	_, err = c.genres.Create(ctx, c.admin, "Drama 2", "drama")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, total, err := c.genres.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestTitleService_YearBound(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	c.titles.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := c.titles.Create(ctx, c.admin, TitleInput{Name: strPtr("Future"), Year: intPtr(2027)})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, ok := apperr.As(err).Field("year")
	assert.True(t, ok)

	title, err := c.titles.Create(ctx, c.admin, TitleInput{Name: strPtr("Now"), Year: intPtr(2026)})
	require.NoError(t, err)
	assert.Equal(t, 2026, title.Year)
}

func TestTitleService_CreateResolvesSlugs(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.categories.Create(ctx, c.admin, "Film", "film")
	require.NoError(t, err)
	_, err = c.genres.Create(ctx, c.admin, "Drama", "drama")
	require.NoError(t, err)

	title, err := c.titles.Create(ctx, c.admin, TitleInput{
		Name:        strPtr("Stalker"),
		Year:        intPtr(1979),
		Description: strPtr("zone"),
		Category:    strPtr("film"),
		Genres:      &[]string{"drama"},
	})
	require.NoError(t, err)
	require.NotNil(t, title.Category)
	assert.Equal(t, "film", title.Category.Slug)
	require.Len(t, title.Genres, 1)
	assert.Nil(t, title.Rating)

	_, err = c.titles.Create(ctx, c.admin, TitleInput{
		Name:     strPtr("Bad"),
		Year:     intPtr(2000),
		Category: strPtr("nope"),
		Genres:   &[]string{"drama", "missing"},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae := apperr.As(err)
	_, hasCategory := ae.Field("category")
	msg, hasGenre := ae.Field("genre")
	assert.True(t, hasCategory)
	assert.True(t, hasGenre)
	assert.Contains(t, msg, "missing")
}

func TestTitleService_RequiredFields(t *testing.T) {
	c := newCatalog(t)

	_, err := c.titles.Create(context.Background(), c.admin, TitleInput{})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae := apperr.As(err)
	_, hasName := ae.Field("name")
	_, hasYear := ae.Field("year")
	assert.True(t, hasName)
	assert.True(t, hasYear)
}

func TestTitleService_UpdatePartial(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.categories.Create(ctx, c.admin, "Film", "film")
	require.NoError(t, err)
	title, err := c.titles.Create(ctx, c.admin, TitleInput{Name: strPtr("Old"), Year: intPtr(1990), Category: strPtr("film")})
	require.NoError(t, err)

	updated, err := c.titles.Update(ctx, c.admin, title.ID, TitleInput{Name: strPtr("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, 1990, updated.Year)
	require.NotNil(t, updated.Category)

	updated, err = c.titles.Update(ctx, c.admin, title.ID, TitleInput{Category: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.Category)

	_, err = c.titles.Update(ctx, c.user, title.ID, TitleInput{Name: strPtr("Hijack")})
	assert.ErrorIs(t, err, apperr.ErrPermission)

	_, err = c.titles.Update(ctx, c.admin, 9999, TitleInput{Name: strPtr("Ghost")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTitleService_Rating(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	title, err := c.titles.Create(ctx, c.admin, TitleInput{Name: strPtr("Rated"), Year: intPtr(2000)})
	require.NoError(t, err)
	other, err := c.titles.Create(ctx, c.admin, TitleInput{Name: strPtr("Unrated"), Year: intPtr(2000)})
	require.NoError(t, err)

	scores := []int{3, 8, 10}
	for i, s := range scores {
		u := testutil.CreateUser(t, c.db, []string{"r1", "r2", "r3"}[i], permission.RoleUser)
		_, err := c.reviews.CreateReview(ctx, testutil.ActorFor(u), title.ID, "text", s)
		require.NoError(t, err)
	}

	got, err := c.titles.Get(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.0, *got.Rating, 1e-9)

	list, _, err := c.titles.List(ctx, repository.TitleFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, item := range list {
		if item.ID == other.ID {
			assert.Nil(t, item.Rating)
		} else {
			require.NotNil(t, item.Rating)
			assert.InDelta(t, 7.0, *item.Rating, 1e-9)
		}
	}
}

func TestTitleService_DeleteCascades(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	title, err := c.titles.Create(ctx, c.admin, TitleInput{Name: strPtr("Gone"), Year: intPtr(2000)})
	require.NoError(t, err)
	_, err = c.reviews.CreateReview(ctx, c.user, title.ID, "text", 5)
	require.NoError(t, err)

	require.NoError(t, c.titles.Delete(ctx, c.admin, title.ID))

	var n int64
	require.NoError(t, c.db.Model(&models.Review{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = c.titles.Get(ctx, title.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
