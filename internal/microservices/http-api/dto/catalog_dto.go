package dto

import "yamdb/internal/microservices/http-api/models"

// CreateCategoryRequest is the body of POST /categories and POST /genres.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type CreateGenreRequest = CreateCategoryRequest

// SearchQuery binds ?search= on catalog and user listings.
type SearchQuery struct {
	PageQuery
	Search string `form:"search"`
}

// SlugResponse is the public shape of a category or genre.
type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CategoryFromModel(c models.Category) SlugResponse {
	return SlugResponse{Name: c.Name, Slug: c.Slug}
}

func GenreFromModel(g models.Genre) SlugResponse {
	return SlugResponse{Name: g.Name, Slug: g.Slug}
}
