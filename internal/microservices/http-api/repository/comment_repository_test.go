package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/permission"
	"yamdb/internal/testutil"
)

// CommentRepositorySuite runs every test against a fresh database holding
// one review to comment on.
type CommentRepositorySuite struct {
	suite.Suite
	db     *gorm.DB
	repo   CommentRepository
	ctx    context.Context
	author *models.User
	review *models.Review
}

func (s *CommentRepositorySuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.repo = NewCommentRepository(s.db)
	s.ctx = context.Background()

	s.author = testutil.CreateUser(s.T(), s.db, "ann", permission.RoleUser)
	title := testutil.CreateTitle(s.T(), s.db, "Solaris", 1972)
	s.review = &models.Review{TitleID: title.ID, AuthorID: s.author.ID, Text: "cold", Score: 8}
	s.Require().NoError(NewReviewRepository(s.db).Create(s.ctx, s.review))
}

func (s *CommentRepositorySuite) comment(text string, at time.Time) *models.Comment {
	c := &models.Comment{ReviewID: s.review.ID, AuthorID: s.author.ID, Text: text, PubDate: at}
	s.Require().NoError(s.repo.Create(s.ctx, c))
	return c
}

func (s *CommentRepositorySuite) TestListNewestFirst() {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.comment("first", base)
	s.comment("third", base.Add(2*time.Hour))
	s.comment("second", base.Add(time.Hour))

	list, total, err := s.repo.ListByReview(s.ctx, s.review.ID, 1, 2)
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Require().Len(list, 2)
	s.Equal("third", list[0].Text)
	s.Equal("second", list[1].Text)
	s.Require().NotNil(list[0].Author)
	s.Equal("ann", list[0].Author.Username)

	list, _, err = s.repo.ListByReview(s.ctx, s.review.ID, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("first", list[0].Text)
}

func (s *CommentRepositorySuite) TestGetByIDScopedToReview() {
	c := s.comment("hello", time.Now())

	got, err := s.repo.GetByID(s.ctx, s.review.ID, c.ID)
	s.Require().NoError(err)
	s.Equal("hello", got.Text)

	_, err = s.repo.GetByID(s.ctx, s.review.ID+1, c.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *CommentRepositorySuite) TestUpdateAndDelete() {
	c := s.comment("typo", time.Now())

	s.Require().NoError(s.repo.Update(s.ctx, c.ID, "fixed"))
	got, err := s.repo.GetByID(s.ctx, s.review.ID, c.ID)
	s.Require().NoError(err)
	s.Equal("fixed", got.Text)

	s.Require().NoError(s.repo.Delete(s.ctx, c.ID))
	s.ErrorIs(s.repo.Delete(s.ctx, c.ID), gorm.ErrRecordNotFound)
	s.ErrorIs(s.repo.Update(s.ctx, c.ID, "again"), gorm.ErrRecordNotFound)
}

func TestCommentRepositorySuite(t *testing.T) {
	suite.Run(t, new(CommentRepositorySuite))
}
