package types

import (
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
)

// RecipeIngredient is an ingredient expanded with the amount used by a recipe
type RecipeIngredient struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse is the read representation of a recipe
type RecipeResponse struct {
	ID               uuid.UUID          `json:"id"`
	Author           UserResponse       `json:"author"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	Tags             []models.Tag       `json:"tags"`
	CookingTime      int                `json:"cooking_time"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
}

// RecipeSummary is the short form returned by favorite/cart toggles and
// nested in subscriptions
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// NewRecipeSummary builds the short form of a recipe
func NewRecipeSummary(r *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
