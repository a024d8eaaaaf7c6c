package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"size:150;not null;uniqueIndex:idx_users_username" json:"username"`
	Email       string `gorm:"size:254;not null;uniqueIndex:idx_users_email" json:"email"`
	FirstName   string `gorm:"size:150" json:"first_name"`
	LastName    string `gorm:"size:150" json:"last_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Role        string `gorm:"size:16;default:'user';not null" json:"role"` // user | moderator | admin
	IsSuperuser bool   `gorm:"default:false;not null" json:"-"`

	// bcrypt hash of the pending confirmation code, empty once exchanged
	ConfirmationCode string     `gorm:"column:confirmation_code" json:"-"`
	CodeIssuedAt     *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = "user"
	}
	return
}

func (User) TableName() string {
	return "users"
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Genre{},
		&Title{},
		&GenreTitle{},
		&Review{},
		&Comment{},
	}
}
