package models

// GenreTitle is the explicit join between titles and genres. GenreID is
// nullable: deleting a genre keeps the row with a NULL reference.
type GenreTitle struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64  `json:"title_id" gorm:"not null;uniqueIndex:idx_genre_titles_title_genre"`
	GenreID *int64 `json:"genre_id" gorm:"uniqueIndex:idx_genre_titles_title_genre;index"`

	Title *Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Genre *Genre `json:"-" gorm:"foreignKey:GenreID;constraint:OnDelete:SET NULL;"`
}

func (GenreTitle) TableName() string {
	return "genre_titles"
}
