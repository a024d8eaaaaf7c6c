package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type UserHandler struct {
	svc service.UserService
	log *slog.Logger
}

func NewUserHandler(svc service.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// RegisterRoutes mounts /users. Every route needs a signed-in actor, the
// admin check lives in the service.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.RequireAuthenticated(h.log))

	rg.GET("/me", h.Me)
	rg.PATCH("/me", h.UpdateMe)

	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:username", h.Get)
	rg.PATCH("/:username", h.Update)
	rg.DELETE("/:username", h.Delete)
}

func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var q dto.SearchQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, pageSize := pageOf(q.PageQuery)

	users, total, err := h.svc.List(ctx, middleware.ActorFrom(c), q.Search, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.Map(users, dto.UserFromModel), page, pageSize, total))
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.Get(ctx, middleware.ActorFrom(c), c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

func (h *UserHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	user, err := h.svc.Create(ctx, middleware.ActorFrom(c), req.ToInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.UserFromModel(*user))
}

func (h *UserHandler) Update(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	user, err := h.svc.Update(ctx, middleware.ActorFrom(c), c.Param("username"), req.ToInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.ActorFrom(c), c.Param("username")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.Me(ctx, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}

// UpdateMe edits the caller's own profile. A role in the body is ignored.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	user, err := h.svc.UpdateMe(ctx, middleware.ActorFrom(c), req.ToInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(*user))
}
