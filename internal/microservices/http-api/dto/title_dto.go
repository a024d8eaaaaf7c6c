package dto

import (
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

// TitleRequest is the body of POST and PATCH /titles. Category and genres
// are referenced by slug.
type TitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" binding:"omitempty,max=50,slug"`
	Genre       *[]string `json:"genre" binding:"omitempty,dive,slug"`
}

func (r TitleRequest) ToInput() service.TitleInput {
	return service.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genre,
	}
}

// TitleQuery binds the filters of GET /titles.
type TitleQuery struct {
	PageQuery
	Genre    string `form:"genre"`
	Category string `form:"category"`
	Year     *int   `form:"year"`
	Name     string `form:"name"`
}

func (q TitleQuery) ToFilter() repository.TitleFilter {
	return repository.TitleFilter{
		GenreSlug:    q.Genre,
		CategorySlug: q.Category,
		Year:         q.Year,
		Name:         q.Name,
	}
}

// TitleResponse is the read shape of a title.
type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description *string        `json:"description"`
	Genre       []SlugResponse `json:"genre"`
	Category    *SlugResponse  `json:"category"`
}

func TitleFromModel(t models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       Map(t.Genres, GenreFromModel),
	}
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		resp.Category = &c
	}
	return resp
}
