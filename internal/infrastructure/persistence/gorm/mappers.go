// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
		IsActive:     u.IsActive(),
		IsVerified:   u.IsVerified(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(model *UserModel) *user.User {
	return user.Reconstruct(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		model.IsActive,
		model.IsVerified,
		model.CreatedAt,
		model.UpdatedAt,
		model.LastLoginAt,
	)
}

// GenerationToModel converts a domain generation to a GORM model
func GenerationToModel(g *generation.Generation) *GenerationModel {
	return &GenerationModel{
		ID:             g.ID(),
		Version:        g.Version(),
		UserID:         g.UserID(),
		Title:          g.Title(),
		OriginalPrompt: g.OriginalPrompt(),
		EnhancedPrompt: g.EnhancedPrompt(),
		Model:          g.Model(),
		AspectRatio:    string(g.AspectRatio()),
		ImagePath:      g.ImagePath(),
		Recipe:         g.Recipe(),
		Ingredients:    g.Ingredients(),
		Cuisine:        string(g.Cuisine()),
		LikeCount:      g.LikeCount(),
		Visibility:     string(g.Visibility()),
		CreatedAt:      g.CreatedAt(),
		UpdatedAt:      g.UpdatedAt(),
	}
}

// ModelToGeneration converts a GORM model to a domain generation
func ModelToGeneration(model *GenerationModel) *generation.Generation {
	return generation.Reconstruct(
		model.ID,
		model.Version,
		model.UserID,
		model.Title,
		model.OriginalPrompt,
		model.EnhancedPrompt,
		model.Model,
		generation.AspectRatio(model.AspectRatio),
		model.ImagePath,
		model.Recipe,
		model.Ingredients,
		generation.CuisineType(model.Cuisine),
		model.LikeCount,
		generation.Visibility(model.Visibility),
		model.CreatedAt,
		model.UpdatedAt,
	)
}
