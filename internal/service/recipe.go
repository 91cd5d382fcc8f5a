package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeFilter narrows a recipe listing. IsFavorited and IsInShoppingCart
// are ignored when Viewer is nil.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	Viewer           *uuid.UUID
}

// RecipeInput is a validated recipe write. Image holds a stored image URL;
// an empty Image on update keeps the current one.
type RecipeInput struct {
	Name        string
	Image       string
	Text        string
	CookingTime int
	Tags        []uuid.UUID
	Ingredients []types.RecipeIngredientInput
}

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	access *AccessControl
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, access *AccessControl) *RecipeService {
	return &RecipeService{db: db, access: access}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("TagAssignments.Tag").
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredient_amounts.position")
		}).
		Preload("IngredientAmounts.Ingredient")
}

// List returns one page of recipes matching filter, newest first
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)
	query := applyRecipeFilter(db.Model(&models.Recipe{}), db, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := preloadRecipe(applyRecipeFilter(db.Model(&models.Recipe{}), db, filter)).
		Order(models.DefaultRecipeOrder).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

func applyRecipeFilter(query, db *gorm.DB, filter RecipeFilter) *gorm.DB {
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}

	if len(filter.Tags) > 0 {
		tagged := db.Model(&models.TagAssignment{}).
			Select("tag_assignments.recipe_id").
			Joins("JOIN tags ON tags.id = tag_assignments.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if filter.Viewer != nil {
		if filter.IsFavorited {
			favorited := db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *filter.Viewer)
			query = query.Where("recipes.id IN (?)", favorited)
		}
		if filter.IsInShoppingCart {
			carted := db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", *filter.Viewer)
			query = query.Where("recipes.id IN (?)", carted)
		}
	}
	return query
}

// Get loads a recipe with its author, tags and ingredients
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	return &recipe, nil
}

func validateRecipeInput(in *RecipeInput, creating bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "this field is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return NewValidationError("text", "this field is required")
	}
	if creating && in.Image == "" {
		return NewValidationError("image", "this field is required")
	}
	if in.CookingTime <= 0 {
		return NewValidationError("cooking_time", "cooking time must be greater than zero")
	}
	if len(in.Tags) == 0 {
		return NewValidationError("tags", "at least one tag is required")
	}
	if len(in.Ingredients) == 0 {
		return NewValidationError("ingredients", "at least one ingredient is required")
	}
	for _, ing := range in.Ingredients {
		if ing.Amount <= 0 {
			return NewValidationError("ingredients", "amount must be greater than zero")
		}
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// checkReferences verifies that every tag and ingredient id exists
func checkReferences(tx *gorm.DB, tagIDs []uuid.UUID, ingredients []types.RecipeIngredientInput) error {
	var count int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check tags: %w", err)
	}
	if int(count) != len(tagIDs) {
		return NewValidationError("tags", "unknown tag id")
	}

	ingredientIDs := make([]uuid.UUID, 0, len(ingredients))
	for _, ing := range ingredients {
		ingredientIDs = append(ingredientIDs, ing.ID)
	}
	ingredientIDs = uniqueIDs(ingredientIDs)
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check ingredients: %w", err)
	}
	if int(count) != len(ingredientIDs) {
		return NewValidationError("ingredients", "unknown ingredient id")
	}
	return nil
}

// writeAssociations inserts the tag and ingredient rows of a recipe
func writeAssociations(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID, ingredients []types.RecipeIngredientInput) error {
	assignments := make([]models.TagAssignment, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		assignments = append(assignments, models.TagAssignment{RecipeID: recipeID, TagID: tagID})
	}
	if err := tx.Omit(clause.Associations).Create(&assignments).Error; err != nil {
		return fmt.Errorf("failed to assign tags: %w", err)
	}

	amounts := make([]models.IngredientAmount, 0, len(ingredients))
	for i, ing := range ingredients {
		amounts = append(amounts, models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: ing.ID,
			Amount:       ing.Amount,
			Position:     i,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&amounts).Error; err != nil {
		return fmt.Errorf("failed to add ingredients: %w", err)
	}
	return nil
}

// Create stores a recipe and its associations in one transaction
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(in, true); err != nil {
		return nil, err
	}
	tagIDs := uniqueIDs(in.Tags)

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Image:       in.Image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, tagIDs, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return writeAssociations(tx, recipe.ID, tagIDs, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", authorID.String()).
		Msg("recipe created")
	return s.Get(ctx, recipe.ID)
}

// Authorize reports whether actorID may perform act on the recipe
func (s *RecipeService) Authorize(ctx context.Context, actorID, recipeID uuid.UUID, act Action) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return notFound(err, "recipe")
	}
	return s.access.Check(&actorID, &recipe, act)
}

// Validate checks a write payload, referenced tags and ingredients
// included, without touching the recipe table. The image is not checked.
func (s *RecipeService) Validate(ctx context.Context, in *RecipeInput) error {
	if err := validateRecipeInput(in, false); err != nil {
		return err
	}
	return checkReferences(s.db.WithContext(ctx), uniqueIDs(in.Tags), in.Ingredients)
}

// Update replaces the recipe fields and rebuilds all of its tag and
// ingredient rows. Only the author may update a recipe.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			return notFound(err, "recipe")
		}
		if err := s.access.Check(&actorID, &recipe, ActionWrite); err != nil {
			return err
		}
		if err := validateRecipeInput(in, false); err != nil {
			return err
		}
		tagIDs := uniqueIDs(in.Tags)
		if err := checkReferences(tx, tagIDs, in.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         strings.TrimSpace(in.Name),
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.Image != "" {
			updates["image"] = in.Image
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.TagAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredients: %w", err)
		}
		return writeAssociations(tx, recipeID, tagIDs, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipeID.String()).Msg("recipe updated")
	return s.Get(ctx, recipeID)
}

// Delete removes a recipe and every row that references it. Only the author
// may delete a recipe.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			return notFound(err, "recipe")
		}
		if err := s.access.Check(&actorID, &recipe, ActionDelete); err != nil {
			return err
		}

		for _, dependent := range []interface{}{
			&models.TagAssignment{},
			&models.IngredientAmount{},
			&models.Favorite{},
			&models.ShoppingCart{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe references: %w", err)
			}
		}

		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipeID.String()).Msg("recipe deleted")
	return nil
}
