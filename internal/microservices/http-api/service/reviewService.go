package service

import (
	"context"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
)

const (
	MinScore = 1
	MaxScore = 10
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	CreateReview(ctx context.Context, actor permission.Actor, titleID int64, text string, score int) (*models.Review, error)
	UpdateReview(ctx context.Context, actor permission.Actor, titleID, reviewID int64, text *string, score *int) (*models.Review, error)
	DeleteReview(ctx context.Context, actor permission.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  *repository.TitleRepo
}

func NewReviewService(reviews repository.ReviewRepository, titles *repository.TitleRepo) ReviewService {
	return &reviewService{reviews: reviews, titles: titles}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("title")
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	list, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, 0, apperr.FromStorage(err, "review")
	}
	return list, total, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	r, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, apperr.FromStorage(err, "review")
	}
	return r, nil
}

// CreateReview stores the actor's review of a title. A second review by the
// same author fails with DuplicateReview; the unique index decides, so two
// concurrent submissions cannot both land.
func (s *reviewService) CreateReview(ctx context.Context, actor permission.Actor, titleID int64, text string, score int) (*models.Review, error) {
	if err := permission.Authorize(permission.LedgerCreate, actor, permission.ActionCreate, permission.Resource{}); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	var fe fieldErrors
	checkText(&fe, text)
	checkScore(&fe, score)
	if err := fe.err(); err != nil {
		return nil, err
	}

	r := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, apperr.FromStorage(err, "review")
	}
	return s.Get(ctx, titleID, r.ID)
}

func (s *reviewService) UpdateReview(ctx context.Context, actor permission.Actor, titleID, reviewID int64, text *string, score *int) (*models.Review, error) {
	r, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, apperr.FromStorage(err, "review")
	}
	if err := permission.Authorize(permission.LedgerPolicy, actor, permission.ActionUpdate, permission.Resource{AuthorID: r.AuthorID}); err != nil {
		return nil, err
	}

	var fe fieldErrors
	fields := map[string]any{}
	if text != nil {
		checkText(&fe, *text)
		fields["text"] = *text
	}
	if score != nil {
		checkScore(&fe, *score)
		fields["score"] = *score
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, reviewID, fields); err != nil {
		return nil, apperr.FromStorage(err, "review")
	}
	return s.Get(ctx, titleID, reviewID)
}

func (s *reviewService) DeleteReview(ctx context.Context, actor permission.Actor, titleID, reviewID int64) error {
	r, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return apperr.FromStorage(err, "review")
	}
	if err := permission.Authorize(permission.LedgerPolicy, actor, permission.ActionDelete, permission.Resource{AuthorID: r.AuthorID}); err != nil {
		return err
	}
	return apperr.FromStorage(s.reviews.Delete(ctx, reviewID), "review")
}

func checkText(fe *fieldErrors, text string) {
	if strings.TrimSpace(text) == "" {
		fe.add("text", "text is required")
	}
}

func checkScore(fe *fieldErrors, score int) {
	if score < MinScore || score > MaxScore {
		fe.add("score", "score must be between 1 and 10")
	}
}
