package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
	limiter     *middleware.IPRateLimiter
	log         *slog.Logger
}

func NewAuthHandler(authService service.AuthService, limiter *middleware.IPRateLimiter, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter, log: log}
}

// RegisterRoutes mounts the public auth endpoints, throttled per client IP.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	if h.limiter != nil {
		rg.Use(middleware.RateLimit(h.limiter, h.log))
	}
	rg.POST("/signup", h.Signup)
	rg.POST("/token", h.Token)
}

// Signup registers a user, or re-sends the code to an existing pair.
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.SignupRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	user, err := h.authService.Signup(ctx, req.Username, req.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignupResponse{Username: user.Username, Email: user.Email})
}

// Token exchanges a confirmation code for an access token.
func (h *AuthHandler) Token(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.TokenRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	token, err := h.authService.Token(ctx, req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
