package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Presenter builds read representations with the viewer-relative fields
// filled from batched lookups
type Presenter struct {
	viewer service.IViewerService
}

func NewPresenter(viewer service.IViewerService) *Presenter {
	return &Presenter{viewer: viewer}
}

// Users presents users with is_subscribed relative to viewer
func (p *Presenter) Users(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := p.viewer.SubscribedTo(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = types.NewUserResponse(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

func (p *Presenter) User(ctx context.Context, viewer *uuid.UUID, user *models.User) (types.UserResponse, error) {
	out, err := p.Users(ctx, viewer, []models.User{*user})
	if err != nil {
		return types.UserResponse{}, err
	}
	return out[0], nil
}

// Recipes presents recipes with is_favorited, is_in_shopping_cart and the
// author's is_subscribed relative to viewer
func (p *Presenter) Recipes(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	flags, err := p.viewer.RecipeFlags(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.viewer.SubscribedTo(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		f := flags[r.ID]
		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Author:           types.NewUserResponse(&r.Author, subscribed[r.AuthorID]),
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			Ingredients:      recipeIngredients(r),
			Tags:             r.Tags(),
			CookingTime:      r.CookingTime,
			IsFavorited:      f.IsFavorited,
			IsInShoppingCart: f.IsInShoppingCart,
		}
	}
	return out, nil
}

func (p *Presenter) Recipe(ctx context.Context, viewer *uuid.UUID, recipe *models.Recipe) (types.RecipeResponse, error) {
	out, err := p.Recipes(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return types.RecipeResponse{}, err
	}
	return out[0], nil
}

func recipeIngredients(r *models.Recipe) []types.RecipeIngredient {
	out := make([]types.RecipeIngredient, 0, len(r.IngredientAmounts))
	for _, a := range r.IngredientAmounts {
		out = append(out, types.RecipeIngredient{
			ID:              a.Ingredient.ID,
			Name:            a.Ingredient.Name,
			MeasurementUnit: a.Ingredient.MeasurementUnit,
			Amount:          a.Amount,
		})
	}
	return out
}

// Subscriptions presents followed authors with their newest recipes capped
// at recipesLimit (no cap below one)
func (p *Presenter) Subscriptions(ctx context.Context, users service.IUserService, viewer uuid.UUID, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	byAuthor, err := users.RecipesByAuthor(ctx, ids, recipesLimit)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.viewer.SubscribedTo(ctx, &viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.SubscriptionResponse, len(authors))
	for i := range authors {
		a := &authors[i]
		entry := byAuthor[a.ID]
		summaries := make([]types.RecipeSummary, 0, len(entry.Recipes))
		for j := range entry.Recipes {
			summaries = append(summaries, types.NewRecipeSummary(&entry.Recipes[j]))
		}
		out[i] = types.SubscriptionResponse{
			UserResponse: types.NewUserResponse(a, subscribed[a.ID]),
			Recipes:      summaries,
			RecipesCount: entry.Count,
		}
	}
	return out, nil
}
