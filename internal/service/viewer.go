package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// RecipeFlags are the viewer-relative fields of a recipe
type RecipeFlags struct {
	IsFavorited      bool
	IsInShoppingCart bool
}

// ViewerService computes viewer-relative fields from the relation tables.
// It holds no state; every answer comes from one batched lookup.
type ViewerService struct {
	db *gorm.DB
}

func NewViewerService(db *gorm.DB) *ViewerService {
	return &ViewerService{db: db}
}

// RecipeFlags returns the flags for each recipe. Recipes missing from the
// result have both flags false; a nil viewer never touches the database.
func (s *ViewerService) RecipeFlags(ctx context.Context, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]RecipeFlags, error) {
	flags := make(map[uuid.UUID]RecipeFlags, len(recipeIDs))
	if viewer == nil || len(recipeIDs) == 0 {
		return flags, nil
	}

	favorited, err := s.recipeIDsIn(ctx, &models.Favorite{}, *viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	carted, err := s.recipeIDsIn(ctx, &models.ShoppingCart{}, *viewer, recipeIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range favorited {
		f := flags[id]
		f.IsFavorited = true
		flags[id] = f
	}
	for _, id := range carted {
		f := flags[id]
		f.IsInShoppingCart = true
		flags[id] = f
	}
	return flags, nil
}

func (s *ViewerService) recipeIDsIn(ctx context.Context, table interface{}, viewer uuid.UUID, recipeIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(table).
		Where("user_id = ? AND recipe_id IN ?", viewer, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer relations: %w", err)
	}
	return ids, nil
}

// SubscribedTo reports which of the authors the viewer follows. The viewer
// is never subscribed to themselves.
func (s *ViewerService) SubscribedTo(ctx context.Context, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool, len(authorIDs))
	if viewer == nil || len(authorIDs) == 0 {
		return subscribed, nil
	}

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", *viewer, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	for _, id := range ids {
		if id != *viewer {
			subscribed[id] = true
		}
	}
	return subscribed, nil
}
