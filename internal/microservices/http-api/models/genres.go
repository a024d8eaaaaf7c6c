package models

type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"size:50;not null;uniqueIndex:idx_genres_slug"`
}

func (Genre) TableName() string {
	return "genres"
}
