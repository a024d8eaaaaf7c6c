package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/testutil"
)

func TestCreateReview_Duplicate(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, c.db, "Dune", 1965)

	r, err := c.reviews.CreateReview(ctx, c.user, title.ID, "great", 9)
	require.NoError(t, err)
	require.NotNil(t, r.Author)
	assert.Equal(t, "ann", r.Author.Username)

	_, err = c.reviews.CreateReview(ctx, c.user, title.ID, "again", 2)
	require.ErrorIs(t, err, apperr.ErrDuplicateReview)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateReview_ConcurrentDuplicate(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, c.db, "Race", 2020)

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.reviews.CreateReview(ctx, c.user, title.ID, "mine", 7)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrDuplicateReview)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCreateReview_Validation(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, c.db, "Dune", 1965)

	for _, score := range []int{0, 11, -3} {
		_, err := c.reviews.CreateReview(ctx, c.user, title.ID, "text", score)
		require.ErrorIs(t, err, apperr.ErrValidation)
		_, ok := apperr.As(err).Field("score")
		assert.True(t, ok)
	}

	_, err := c.reviews.CreateReview(ctx, c.user, title.ID, "  ", 5)
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, ok := apperr.As(err).Field("text")
	assert.True(t, ok)

	_, err = c.reviews.CreateReview(ctx, c.user, 9999, "text", 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = c.reviews.CreateReview(ctx, permission.Anonymous(), title.ID, "text", 5)
	assert.ErrorIs(t, err, apperr.ErrPermission)
}

func TestDeleteReview_Ownership(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, c.db, "Dune", 1965)
	bob := testutil.ActorFor(testutil.CreateUser(t, c.db, "bob", permission.RoleUser))
	mod := testutil.ActorFor(testutil.CreateUser(t, c.db, "mod", permission.RoleModerator))

	annReview, err := c.reviews.CreateReview(ctx, c.user, title.ID, "ann's", 6)
	require.NoError(t, err)
	bobReview, err := c.reviews.CreateReview(ctx, bob, title.ID, "bob's", 4)
	require.NoError(t, err)

	err = c.reviews.DeleteReview(ctx, bob, title.ID, annReview.ID)
	require.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus())

	require.NoError(t, c.reviews.DeleteReview(ctx, bob, title.ID, bobReview.ID))
	require.NoError(t, c.reviews.DeleteReview(ctx, mod, title.ID, annReview.ID))

	_, err = c.reviews.Get(ctx, title.ID, annReview.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateReview(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, c.db, "Dune", 1965)

	r, err := c.reviews.CreateReview(ctx, c.user, title.ID, "first take", 6)
	require.NoError(t, err)

	updated, err := c.reviews.UpdateReview(ctx, c.user, title.ID, r.ID, nil, intPtr(9))
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Score)
	assert.Equal(t, "first take", updated.Text)

	_, err = c.reviews.UpdateReview(ctx, c.user, title.ID, r.ID, nil, intPtr(42))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = c.reviews.UpdateReview(ctx, c.admin, title.ID, r.ID, strPtr("edited by admin"), nil)
	require.NoError(t, err)

	other := testutil.CreateTitle(t, c.db, "Other", 2000)
	_, err = c.reviews.UpdateReview(ctx, c.user, other.ID, r.ID, strPtr("x"), nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListReviews_UnknownTitle(t *testing.T) {
	c := newCatalog(t)
	_, _, err := c.reviews.List(context.Background(), 12345, 1, 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommentService(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	comments := NewCommentService(repository.NewCommentRepository(c.db), repository.NewReviewRepository(c.db))
	title := testutil.CreateTitle(t, c.db, "Dune", 1965)
	bob := testutil.ActorFor(testutil.CreateUser(t, c.db, "bob", permission.RoleUser))

	review, err := c.reviews.CreateReview(ctx, c.user, title.ID, "review", 8)
	require.NoError(t, err)

	cm, err := comments.CreateComment(ctx, bob, title.ID, review.ID, "agree")
	require.NoError(t, err)
	require.NotNil(t, cm.Author)
	assert.Equal(t, "bob", cm.Author.Username)

	_, err = comments.CreateComment(ctx, bob, title.ID, review.ID, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = comments.UpdateComment(ctx, c.user, title.ID, review.ID, cm.ID, strPtr("not mine"))
	assert.ErrorIs(t, err, apperr.ErrPermission)

	edited, err := comments.UpdateComment(ctx, bob, title.ID, review.ID, cm.ID, strPtr("strongly agree"))
	require.NoError(t, err)
	assert.Equal(t, "strongly agree", edited.Text)

	other := testutil.CreateTitle(t, c.db, "Other", 2000)
	_, err = comments.Get(ctx, other.ID, review.ID, cm.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "review must belong to the title in the path")

	list, total, err := comments.List(ctx, title.ID, review.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, comments.DeleteComment(ctx, c.admin, title.ID, review.ID, cm.ID))
	_, err = comments.Get(ctx, title.ID, review.ID, cm.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var n int64
	require.NoError(t, c.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
}
