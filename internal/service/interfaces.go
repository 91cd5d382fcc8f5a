package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(userID uuid.UUID) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	RevokeToken(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// IUserService defines the interface for user lookups
type IUserService interface {
	List(ctx context.Context, page Page) ([]models.User, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Subscriptions(ctx context.Context, userID uuid.UUID, page Page) ([]models.User, int64, error)
	RecipesByAuthor(ctx context.Context, authorIDs []uuid.UUID, limit int) (map[uuid.UUID]*AuthorRecipes, error)
}

// IFollowService defines the interface for subscriptions between users
type IFollowService interface {
	Follow(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error)
	Unfollow(ctx context.Context, userID, authorID uuid.UUID) error
}

// ITagService defines the interface for the tag catalogue
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	Create(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error)
}

// IIngredientService defines the interface for the ingredient catalogue
type IIngredientService interface {
	List(ctx context.Context, name string) ([]models.Ingredient, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	Import(ctx context.Context, ingredients []models.Ingredient) (int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Create(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, actorID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error)
	Delete(ctx context.Context, actorID, recipeID uuid.UUID) error
	Authorize(ctx context.Context, actorID, recipeID uuid.UUID, act Action) error
	Validate(ctx context.Context, in *RecipeInput) error
}

// IToggleService defines the interface for favorite and shopping cart membership
type IToggleService interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IViewerService defines the interface for viewer-relative fields
type IViewerService interface {
	RecipeFlags(ctx context.Context, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]RecipeFlags, error)
	SubscribedTo(ctx context.Context, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// IShoppingListService defines the interface for the shopping list download
type IShoppingListService interface {
	Build(ctx context.Context, userID uuid.UUID) (*ShoppingList, error)
}

// IImageService defines the interface for recipe image storage
type IImageService interface {
	SaveDataURI(ctx context.Context, value string) (string, error)
}

// Clock returns the current time; handlers take one so tests can pin dates
type Clock func() time.Time
