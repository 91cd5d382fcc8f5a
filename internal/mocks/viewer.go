package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/service"
)

// MockViewerService is a mock implementation of the viewer service
type MockViewerService struct {
	mock.Mock
}

func (m *MockViewerService) RecipeFlags(ctx context.Context, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]service.RecipeFlags, error) {
	args := m.Called(ctx, viewer, recipeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]service.RecipeFlags), args.Error(1)
}

func (m *MockViewerService) SubscribedTo(ctx context.Context, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, viewer, authorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}
