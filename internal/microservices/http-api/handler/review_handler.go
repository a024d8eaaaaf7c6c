package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type ReviewHandler struct {
	svc service.ReviewService
	log *slog.Logger
}

func NewReviewHandler(svc service.ReviewService, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: log}
}

// RegisterRoutes mounts under /titles/:title_id/reviews.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := middleware.RequireAuthenticated(h.log)
	rg.GET("", h.List)
	rg.POST("", auth, h.Create)
	rg.GET("/:review_id", h.Get)
	rg.PATCH("/:review_id", auth, h.Update)
	rg.DELETE("/:review_id", auth, h.Delete)
}

func (h *ReviewHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, pageSize := pageOf(q)

	list, total, err := h.svc.List(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.Map(list, dto.ReviewFromModel), page, pageSize, total))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, h.log, "review_id", "review")
	if !ok {
		return
	}
	r, err := h.svc.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewFromModel(*r))
}

func (h *ReviewHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	r, err := h.svc.CreateReview(ctx, middleware.ActorFrom(c), titleID, req.Text, *req.Score)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReviewFromModel(*r))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, h.log, "review_id", "review")
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	r, err := h.svc.UpdateReview(ctx, middleware.ActorFrom(c), titleID, reviewID, req.Text, req.Score)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewFromModel(*r))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, h.log, "review_id", "review")
	if !ok {
		return
	}
	if err := h.svc.DeleteReview(ctx, middleware.ActorFrom(c), titleID, reviewID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
