// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"default:true"`
	IsVerified   bool      `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time

	// Relationships
	Generations []GenerationModel `gorm:"foreignKey:UserID"`
}

// GenerationModel represents the GORM model for image generations
type GenerationModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Version int64     `gorm:"default:1"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title   string    `gorm:"type:varchar(255)"`

	OriginalPrompt string `gorm:"type:text;not null"`
	EnhancedPrompt string `gorm:"type:text"`
	Model          string `gorm:"type:varchar(100)"`
	AspectRatio    string `gorm:"type:varchar(10)"`

	// Comma-joined public image URLs.
	ImagePath string `gorm:"type:text;not null"`

	// Food-mode content
	Recipe      string `gorm:"type:text"`
	Ingredients string `gorm:"type:text"`
	Cuisine     string `gorm:"type:varchar(50)"`

	LikeCount  int    `gorm:"column:like_count;default:0;index"`
	Visibility string `gorm:"type:varchar(20);default:'private';index"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Relationships
	User  UserModel   `gorm:"foreignKey:UserID"`
	Likes []LikeModel `gorm:"foreignKey:GenerationID"`
}

// LikeModel represents the GORM model for likes. Likes are keyed by
// generation, not by derived display record.
type LikeModel struct {
	GenerationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `gorm:"index"`

	// Relationships
	Generation GenerationModel `gorm:"foreignKey:GenerationID"`
	User       UserModel       `gorm:"foreignKey:UserID"`
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for GenerationModel
func (g *GenerationModel) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (GenerationModel) TableName() string {
	return "generations"
}

func (LikeModel) TableName() string {
	return "likes"
}
