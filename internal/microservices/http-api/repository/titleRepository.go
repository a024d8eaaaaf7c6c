package repository

import (
	"context"
	"fmt"
	"strings"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows a title listing. Zero fields are ignored.
type TitleFilter struct {
	GenreSlug    string
	CategorySlug string
	Year         *int
	Name         string
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.filtered(r.db.WithContext(ctx).Model(&models.Title{}), f)
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := q.Select("titles.*").
		Preload("Category").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	if err := loadGenres(r.db.WithContext(ctx), list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// filtered applies f. The name filter splits on whitespace and requires
// every token to appear in the name.
func (r *TitleRepo) filtered(q *gorm.DB, f TitleFilter) *gorm.DB {
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.GenreSlug != "" {
		sub := r.db.Table("genre_titles").
			Select("genre_titles.title_id").
			Joins("JOIN genres ON genres.id = genre_titles.genre_id").
			Where("genres.slug = ?", f.GenreSlug)
		q = q.Where("titles.id IN (?)", sub)
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	for _, tok := range strings.Fields(f.Name) {
		q = q.Where(containsClause("titles.name"), likePattern(tok))
	}
	return q
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Category").First(&t, id).Error; err != nil {
		return nil, err
	}
	list := []models.Title{t}
	if err := loadGenres(r.db.WithContext(ctx), list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *TitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return count > 0, nil
}

// Create inserts t and links it to genreIDs in one transaction.
func (r *TitleRepo) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin: %w", tx.Error)
	}
	if err := tx.Omit("Category").Create(t).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create title: %w", err)
	}
	if err := linkGenres(tx, t.ID, genreIDs); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Update applies fields to the title. When replaceGenres is set the genre
// links are replaced by genreIDs.
func (r *TitleRepo) Update(ctx context.Context, id int64, fields map[string]any, genreIDs []int64, replaceGenres bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Title
		if err := tx.Select("id").First(&t, id).Error; err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&models.Title{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return fmt.Errorf("update title: %w", err)
			}
		}
		if !replaceGenres {
			return nil
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.GenreTitle{}).Error; err != nil {
			return fmt.Errorf("clear title genres: %w", err)
		}
		return linkGenres(tx, id, genreIDs)
	})
}

// Delete removes the title together with its reviews, their comments and
// its genre links.
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Title
		if err := tx.Select("id").First(&t, id).Error; err != nil {
			return err
		}
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete title comments: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete title reviews: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.GenreTitle{}).Error; err != nil {
			return fmt.Errorf("delete title genres: %w", err)
		}
		if err := tx.Delete(&models.Title{}, id).Error; err != nil {
			return fmt.Errorf("delete title: %w", err)
		}
		return nil
	})
}

func linkGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(genreIDs))
	links := make([]models.GenreTitle, 0, len(genreIDs))
	for _, gid := range genreIDs {
		if _, dup := seen[gid]; dup {
			continue
		}
		seen[gid] = struct{}{}
		id := gid
		links = append(links, models.GenreTitle{TitleID: titleID, GenreID: &id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link genres: %w", err)
	}
	return nil
}

type titleGenreRow struct {
	TitleID int64
	ID      int64
	Name    string
	Slug    string
}

// loadGenres fills Genres on every title from genre_titles. Links whose
// genre was deleted are skipped.
func loadGenres(db *gorm.DB, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]int64, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
		titles[i].Genres = []models.Genre{}
	}

	var rows []titleGenreRow
	if err := db.Table("genre_titles").
		Select("genre_titles.title_id, genres.id, genres.name, genres.slug").
		Joins("JOIN genres ON genres.id = genre_titles.genre_id").
		Where("genre_titles.title_id IN ?", ids).
		Order("genres.name asc").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}

	byTitle := make(map[int64][]models.Genre, len(titles))
	for _, row := range rows {
		byTitle[row.TitleID] = append(byTitle[row.TitleID], models.Genre{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}
	for i := range titles {
		if g, ok := byTitle[titles[i].ID]; ok {
			titles[i].Genres = g
		}
	}
	return nil
}
