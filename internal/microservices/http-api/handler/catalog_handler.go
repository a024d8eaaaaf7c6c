package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type CategoryHandler struct {
	svc service.CategoryService
	log *slog.Logger
}

func NewCategoryHandler(svc service.CategoryService, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log}
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", middleware.RequireAuthenticated(h.log), h.Create)
	rg.DELETE("/:slug", middleware.RequireAuthenticated(h.log), h.Delete)
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var q dto.SearchQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, pageSize := pageOf(q.PageQuery)

	list, total, err := h.svc.List(ctx, q.Search, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.Map(list, dto.CategoryFromModel), page, pageSize, total))
}

func (h *CategoryHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateCategoryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	cat, err := h.svc.Create(ctx, middleware.ActorFrom(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryFromModel(*cat))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type GenreHandler struct {
	svc service.GenreService
	log *slog.Logger
}

func NewGenreHandler(svc service.GenreService, log *slog.Logger) *GenreHandler {
	return &GenreHandler{svc: svc, log: log}
}

func (h *GenreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", middleware.RequireAuthenticated(h.log), h.Create)
	rg.DELETE("/:slug", middleware.RequireAuthenticated(h.log), h.Delete)
}

func (h *GenreHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var q dto.SearchQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, pageSize := pageOf(q.PageQuery)

	list, total, err := h.svc.List(ctx, q.Search, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.Map(list, dto.GenreFromModel), page, pageSize, total))
}

func (h *GenreHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateGenreRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	g, err := h.svc.Create(ctx, middleware.ActorFrom(c), req.Name, req.Slug)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.GenreFromModel(*g))
}

func (h *GenreHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
