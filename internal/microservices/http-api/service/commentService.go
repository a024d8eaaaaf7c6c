package service

import (
	"context"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	CreateComment(ctx context.Context, actor permission.Actor, titleID, reviewID int64, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64, text *string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{comments: comments, reviews: reviews}
}

// requireReview checks the review exists under the title.
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.GetByID(ctx, titleID, reviewID); err != nil {
		return apperr.FromStorage(err, "review")
	}
	return nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.comments.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, 0, apperr.FromStorage(err, "comment")
	}
	return list, total, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.comments.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, apperr.FromStorage(err, "comment")
	}
	return c, nil
}

func (s *commentService) CreateComment(ctx context.Context, actor permission.Actor, titleID, reviewID int64, text string) (*models.Comment, error) {
	if err := permission.Authorize(permission.LedgerCreate, actor, permission.ActionCreate, permission.Resource{}); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	var fe fieldErrors
	checkText(&fe, text)
	if err := fe.err(); err != nil {
		return nil, err
	}

	c := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: text}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperr.FromStorage(err, "comment")
	}
	return s.Get(ctx, titleID, reviewID, c.ID)
}

func (s *commentService) UpdateComment(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64, text *string) (*models.Comment, error) {
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(permission.LedgerPolicy, actor, permission.ActionUpdate, permission.Resource{AuthorID: c.AuthorID}); err != nil {
		return nil, err
	}

	if text == nil {
		return c, nil
	}
	var fe fieldErrors
	checkText(&fe, *text)
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.comments.Update(ctx, commentID, *text); err != nil {
		return nil, apperr.FromStorage(err, "comment")
	}
	return s.Get(ctx, titleID, reviewID, commentID)
}

func (s *commentService) DeleteComment(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID int64) error {
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := permission.Authorize(permission.LedgerPolicy, actor, permission.ActionDelete, permission.Resource{AuthorID: c.AuthorID}); err != nil {
		return err
	}
	return apperr.FromStorage(s.comments.Delete(ctx, commentID), "comment")
}
