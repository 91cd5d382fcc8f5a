package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// List mocks the List method
func (m *MockRecipeService) List(ctx context.Context, filter service.RecipeFilter, page service.Page) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

// Get mocks the Get method
func (m *MockRecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// Create mocks the Create method
func (m *MockRecipeService) Create(ctx context.Context, authorID uuid.UUID, in *service.RecipeInput) (*models.Recipe, error) {
	args := m.Called(ctx, authorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// Update mocks the Update method
func (m *MockRecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, in *service.RecipeInput) (*models.Recipe, error) {
	args := m.Called(ctx, actorID, recipeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockRecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	args := m.Called(ctx, actorID, recipeID)
	return args.Error(0)
}

// Authorize mocks the Authorize method
func (m *MockRecipeService) Authorize(ctx context.Context, actorID, recipeID uuid.UUID, act service.Action) error {
	args := m.Called(ctx, actorID, recipeID, act)
	return args.Error(0)
}

func (m *MockRecipeService) Validate(ctx context.Context, in *service.RecipeInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

// MockImageService is a mock implementation of the image service
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) SaveDataURI(ctx context.Context, value string) (string, error) {
	args := m.Called(ctx, value)
	return args.String(0), args.Error(1)
}
