package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type CommentHandler struct {
	svc service.CommentService
	log *slog.Logger
}

func NewCommentHandler(svc service.CommentService, log *slog.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, log: log}
}

// RegisterRoutes mounts under /titles/:title_id/reviews/:review_id/comments.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := middleware.RequireAuthenticated(h.log)
	rg.GET("", h.List)
	rg.POST("", auth, h.Create)
	rg.GET("/:comment_id", h.Get)
	rg.PATCH("/:comment_id", auth, h.Update)
	rg.DELETE("/:comment_id", auth, h.Delete)
}

// parents parses the title and review ids of the path.
func (h *CommentHandler) parents(c *gin.Context) (int64, int64, bool) {
	titleID, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok := pathID(c, h.log, "review_id", "review")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func (h *CommentHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, pageSize := pageOf(q)

	list, total, err := h.svc.List(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.Map(list, dto.CommentFromModel), page, pageSize, total))
}

func (h *CommentHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, h.log, "comment_id", "comment")
	if !ok {
		return
	}
	cm, err := h.svc.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(*cm))
}

func (h *CommentHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cm, err := h.svc.CreateComment(ctx, middleware.ActorFrom(c), titleID, reviewID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CommentFromModel(*cm))
}

func (h *CommentHandler) Update(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, h.log, "comment_id", "comment")
	if !ok {
		return
	}
	var req dto.UpdateCommentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cm, err := h.svc.UpdateComment(ctx, middleware.ActorFrom(c), titleID, reviewID, commentID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(*cm))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, h.log, "comment_id", "comment")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(ctx, middleware.ActorFrom(c), titleID, reviewID, commentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
