package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// ShoppingItem is the summed amount of one ingredient
type ShoppingItem struct {
	Name  string
	Unit  string
	Total int
}

// ShoppingList is the aggregate of every recipe in a cart
type ShoppingList struct {
	RecipeCount int
	Items       []ShoppingItem
}

const shoppingListSeparator = "-------------------"

// AggregateShoppingList sums ingredient amounts by ingredient name. Items
// keep the order in which each name is first met and the unit seen first.
func AggregateShoppingList(recipes []models.Recipe) *ShoppingList {
	list := &ShoppingList{RecipeCount: len(recipes), Items: []ShoppingItem{}}
	index := make(map[string]int)

	for _, recipe := range recipes {
		for _, amount := range recipe.IngredientAmounts {
			name := amount.Ingredient.Name
			if i, ok := index[name]; ok {
				list.Items[i].Total += amount.Amount
				continue
			}
			index[name] = len(list.Items)
			list.Items = append(list.Items, ShoppingItem{
				Name:  name,
				Unit:  amount.Ingredient.MeasurementUnit,
				Total: amount.Amount,
			})
		}
	}
	return list
}

// Render formats the list as the plain-text download
func (l *ShoppingList) Render(now time.Time) string {
	var b strings.Builder
	b.WriteString("FoodGram\n")
	b.WriteString("Recipes selected: " + strconv.Itoa(l.RecipeCount) + "\n")
	b.WriteString(shoppingListSeparator + "\n")
	b.WriteString(now.Format("02-01-2006") + "\n")
	b.WriteString("Shopping list:\n")
	b.WriteString(shoppingListSeparator)
	for _, item := range l.Items {
		fmt.Fprintf(&b, "\n%s (%s) - %d", item.Name, item.Unit, item.Total)
	}
	return b.String()
}

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build aggregates every recipe in the user's shopping cart, newest recipe first
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) (*ShoppingList, error) {
	db := s.db.WithContext(ctx)
	carted := db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", userID)

	var recipes []models.Recipe
	err := db.
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredient_amounts.position")
		}).
		Preload("IngredientAmounts.Ingredient").
		Where("recipes.id IN (?)", carted).
		Order(models.DefaultRecipeOrder).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping cart: %w", err)
	}

	return AggregateShoppingList(recipes), nil
}
