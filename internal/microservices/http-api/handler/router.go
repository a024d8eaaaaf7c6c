package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

// RouterDeps carries everything the HTTP layer is wired from.
type RouterDeps struct {
	Categories service.CategoryService
	Genres     service.GenreService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
	Users      service.UserService
	Auth       service.AuthService
	UserRepo   repository.UserRepository

	// AuthLimiter throttles /auth. Nil disables throttling.
	AuthLimiter *middleware.IPRateLimiter
	Ping        Pinger
	CORSOrigins []string
	Log         *slog.Logger
}

// NewRouter builds the gin engine serving /api/v1.
func NewRouter(d RouterDeps) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// PUT is not part of the API; unknown methods get a JSON 405
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		middleware.WriteError(c, nil, apperr.MethodNotAllowed(c.Request.Method))
	})
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, apperr.NotFound("resource"))
	})

	if d.Ping != nil {
		NewHealthHandler(d.Ping, d.Log).RegisterRoutes(r)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth(d.Auth, d.UserRepo, d.Log))

	NewAuthHandler(d.Auth, d.AuthLimiter, d.Log).RegisterRoutes(api.Group("/auth"))
	NewUserHandler(d.Users, d.Log).RegisterRoutes(api.Group("/users"))
	NewCategoryHandler(d.Categories, d.Log).RegisterRoutes(api.Group("/categories"))
	NewGenreHandler(d.Genres, d.Log).RegisterRoutes(api.Group("/genres"))

	titles := api.Group("/titles")
	NewTitleHandler(d.Titles, d.Log).RegisterRoutes(titles)
	reviews := titles.Group("/:title_id/reviews")
	NewReviewHandler(d.Reviews, d.Log).RegisterRoutes(reviews)
	NewCommentHandler(d.Comments, d.Log).RegisterRoutes(reviews.Group("/:review_id/comments"))

	return r
}
