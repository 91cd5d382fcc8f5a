//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c *client) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func setup(t *testing.T) (*client, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)
	access, err := service.NewAccessControl()
	require.NoError(t, err)

	mediaDir := t.TempDir()
	cfg := &config.Config{
		CORSOrigins:       []string{"http://localhost:3000"},
		PageSize:          6,
		MediaDir:          mediaDir,
		MediaURL:          "/media",
		RecipeCreateLimit: 100,
	}

	engine := router.SetupRouter(router.Deps{
		Config:      cfg,
		DB:          db,
		Auth:        service.NewAuthService(db, "integration-secret", time.Hour, service.NewMemoryDenylist()),
		Users:       service.NewUserService(db),
		Follows:     service.NewFollowService(db),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Viewer:      service.NewViewerService(db),
		Recipes: api.RecipeServices{
			Recipes:      service.NewRecipeService(db, access),
			Favorites:    service.NewToggleService(db, service.NewFavoriteStore(db)),
			ShoppingCart: service.NewToggleService(db, service.NewShoppingCartStore(db)),
			ShoppingList: service.NewShoppingListService(db),
			Images:       service.NewImageService(service.NewLocalStore(mediaDir, "/media")),
		},
	})
	return &client{t: t, router: engine}, db
}

func register(t *testing.T, c *client, username string) (types.RegisteredUser, string) {
	w := c.do(http.MethodPost, "/api/users/", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  username,
		"password":   "integration-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user types.RegisteredUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))

	w = c.do(http.MethodPost, "/api/auth/token/login/", "", gin.H{"email": username + "@example.com", "password": "integration-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	return user, token["auth_token"]
}

func TestMigrationsSeedTagsAndAreIdempotent(t *testing.T) {
	_, db := setup(t)

	var slugs []string
	require.NoError(t, db.Model(&models.Tag{}).Order("slug").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"breakfast", "dinner", "lunch"}, slugs)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(context.Background(), sqlDB))

	applied, err := database.AppliedMigrations(context.Background(), sqlDB)
	require.NoError(t, err)
	assert.Len(t, applied, 3)
}

func TestStorageConstraints(t *testing.T) {
	_, db := setup(t)
	user := testhelpers.CreateUser(t, db, "solo")

	err := db.Create(&models.Follow{UserID: user.ID, AuthorID: user.ID}).Error
	assert.Error(t, err, "self-follow must be rejected by the database")

	recipe := &models.Recipe{AuthorID: user.ID, Name: "Bad", Image: "x", Text: "x", CookingTime: 0}
	assert.Error(t, db.Omit("Author", "TagAssignments", "IngredientAmounts").Create(recipe).Error)
}

func TestRecipeLifecycle(t *testing.T) {
	c, db := setup(t)
	author, authorToken := register(t, c, "author")
	_, readerToken := register(t, c, "reader")

	var lunch models.Tag
	require.NoError(t, db.Where("slug = ?", "lunch").First(&lunch).Error)
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	w := c.do(http.MethodPost, "/api/recipes/", authorToken, gin.H{
		"name":         "Bread",
		"text":         "Knead and bake.",
		"cooking_time": 60,
		"image":        "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		"tags":         []string{lunch.ID.String()},
		"ingredients":  []gin.H{{"id": flour.ID.String(), "amount": 500}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var recipe types.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	recipePath := "/api/recipes/" + recipe.ID.String() + "/"

	w = c.do(http.MethodGet, "/api/recipes/?tags=lunch,dinner", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Paginated[types.RecipeResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Count)

	w = c.do(http.MethodPost, recipePath+"shopping_cart/", readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = c.do(http.MethodPost, recipePath+"favorite/", readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodGet, recipePath, readerToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.True(t, recipe.IsFavorited)
	assert.True(t, recipe.IsInShoppingCart)

	w = c.do(http.MethodGet, "/api/recipes/download_shopping_cart/", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flour (g) - 500")

	w = c.do(http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe/", readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodDelete, recipePath, readerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodDelete, recipePath, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var carts int64
	require.NoError(t, db.Model(&models.ShoppingCart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}
