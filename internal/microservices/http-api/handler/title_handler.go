package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type TitleHandler struct {
	svc service.TitleService
	log *slog.Logger
}

func NewTitleHandler(svc service.TitleService, log *slog.Logger) *TitleHandler {
	return &TitleHandler{svc: svc, log: log}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:title_id", h.Get)

	// Admin-only routes, the service enforces the role
	auth := middleware.RequireAuthenticated(h.log)
	rg.POST("", auth, h.Create)
	rg.PATCH("/:title_id", auth, h.Update)
	rg.DELETE("/:title_id", auth, h.Delete)
}

func (h *TitleHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var q dto.TitleQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, pageSize := pageOf(q.PageQuery)

	list, total, err := h.svc.List(ctx, q.ToFilter(), page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.Map(list, dto.TitleFromModel), page, pageSize, total))
}

func (h *TitleHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	t, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromModel(*t))
}

func (h *TitleHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.TitleRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	t, err := h.svc.Create(ctx, middleware.ActorFrom(c), req.ToInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TitleFromModel(*t))
}

func (h *TitleHandler) Update(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	var req dto.TitleRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	t, err := h.svc.Update(ctx, middleware.ActorFrom(c), id, req.ToInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromModel(*t))
}

func (h *TitleHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, ok := pathID(c, h.log, "title_id", "title")
	if !ok {
		return
	}
	if err := h.svc.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
