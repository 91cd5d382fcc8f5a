package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTagService(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	tag, err := svc.Create(ctx, &types.CreateTagRequest{Name: "Late Breakfast", Color: "#e26c2d"})
	require.NoError(t, err)
	assert.Equal(t, "late-breakfast", tag.Slug)
	assert.Equal(t, "#E26C2D", tag.Color)

	got, err := svc.Get(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late Breakfast", got.Name)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Create(ctx, &types.CreateTagRequest{Name: "Dinner", Color: "#8775D2", Slug: "dinner"})
	require.NoError(t, err)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Dinner", tags[0].Name)
}

func TestTagServiceUniqueness(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &types.CreateTagRequest{Name: "Lunch", Color: "#49B64E"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   types.CreateTagRequest
		field string
	}{
		{"same name", types.CreateTagRequest{Name: "Lunch", Color: "#000000", Slug: "other"}, "name"},
		{"same slug", types.CreateTagRequest{Name: "Lunch!", Color: "#000000"}, "slug"},
		{"same color", types.CreateTagRequest{Name: "Brunch", Color: "#49b64e"}, "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
