package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// RelationStore is a (user, recipe) membership set such as favorites or the
// shopping cart
type RelationStore interface {
	Name() string
	Exists(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	// Add is idempotent
	Add(ctx context.Context, userID, recipeID uuid.UUID) error
	// Remove returns ErrNotFound when the pair is absent
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
}

type relationTable struct {
	db   *gorm.DB
	name string
	row  func(userID, recipeID uuid.UUID) interface{}
}

// NewFavoriteStore returns the favorites relation
func NewFavoriteStore(db *gorm.DB) RelationStore {
	return &relationTable{
		db:   db,
		name: "favorite",
		row: func(userID, recipeID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

// NewShoppingCartStore returns the shopping cart relation
func NewShoppingCartStore(db *gorm.DB) RelationStore {
	return &relationTable{
		db:   db,
		name: "shopping cart entry",
		row: func(userID, recipeID uuid.UUID) interface{} {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
	}
}

func (t *relationTable) Name() string {
	return t.name
}

func (t *relationTable) Exists(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(t.row(userID, recipeID)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", t.name, err)
	}
	return count > 0, nil
}

func (t *relationTable) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(t.row(userID, recipeID)).Error
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", t.name, err)
	}
	return nil
}

func (t *relationTable) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := t.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(t.row(userID, recipeID))
	if result.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", t.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %w", t.name, ErrNotFound)
	}
	return nil
}

// ToggleService adds and removes recipes from one RelationStore
type ToggleService struct {
	db    *gorm.DB
	store RelationStore
}

func NewToggleService(db *gorm.DB, store RelationStore) *ToggleService {
	return &ToggleService{db: db, store: store}
}

func (s *ToggleService) recipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	return &recipe, nil
}

// Add puts the recipe into the set and returns it
func (s *ToggleService) Add(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Remove takes the recipe out of the set
func (s *ToggleService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	return s.store.Remove(ctx, userID, recipeID)
}
