package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the password of every user created by CreateUser
const TestPassword = "password123"

// CreateUser inserts a user named username with TestPassword
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateTag inserts a tag whose slug is slug
func CreateTag(t *testing.T, db *gorm.DB, slug, color string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: "Tag " + slug, Slug: slug, Color: color}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

// Amount pairs an ingredient with a quantity for CreateRecipe
type Amount struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its tags and ingredient amounts directly,
// bypassing the service layer
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, amounts ...Amount) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       fmt.Sprintf("/media/recipes/images/%s.png", uuid.NewString()),
		Text:        "Mix and cook.",
		CookingTime: 10,
	}
	if err := db.Omit("Author", "TagAssignments", "IngredientAmounts").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	for _, tag := range tags {
		if err := db.Omit("Tag").Create(&models.TagAssignment{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to assign tag: %v", err)
		}
	}
	for i, a := range amounts {
		row := &models.IngredientAmount{
			RecipeID:     recipe.ID,
			IngredientID: a.Ingredient.ID,
			Amount:       a.Amount,
			Position:     i,
		}
		if err := db.Omit("Ingredient").Create(row).Error; err != nil {
			t.Fatalf("failed to add ingredient: %v", err)
		}
	}
	return recipe
}
