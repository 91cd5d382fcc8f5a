package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns one page of users ordered by username
func (s *UserService) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := db.Order("username").Offset(page.Offset()).Limit(page.Limit()).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// Subscriptions returns one page of the authors userID follows
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)

	var total int64
	if err := db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var users []models.User
	err := db.Where("id IN (?)", followed).
		Order("username").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return users, total, nil
}

// AuthorRecipes holds the newest recipes of an author and their total count
type AuthorRecipes struct {
	Recipes []models.Recipe
	Count   int64
}

// RecipesByAuthor loads, for each author, at most limit recipes (newest first)
// plus the author's total recipe count. A limit below one means no cap.
func (s *UserService) RecipesByAuthor(ctx context.Context, authorIDs []uuid.UUID, limit int) (map[uuid.UUID]*AuthorRecipes, error) {
	out := make(map[uuid.UUID]*AuthorRecipes, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	for _, id := range authorIDs {
		out[id] = &AuthorRecipes{Recipes: []models.Recipe{}}
	}

	db := s.db.WithContext(ctx)

	var recipes []models.Recipe
	if err := db.Where("author_id IN ?", authorIDs).Order(models.DefaultRecipeOrder).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load author recipes: %w", err)
	}

	for _, r := range recipes {
		entry := out[r.AuthorID]
		entry.Count++
		if limit < 1 || len(entry.Recipes) < limit {
			entry.Recipes = append(entry.Recipes, r)
		}
	}
	return out, nil
}
