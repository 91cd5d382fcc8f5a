package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	auth   *service.AuthService
	router *gin.Engine
	media  string
}

// newTestAPI wires every handler over an in-memory database the way the
// router does, with a fixed clock for shopping lists
func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithLimiter(t, nil)
}

func newTestAPIWithLimiter(t *testing.T, limiter middleware.Limiter) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api.RegisterValidators()

	db := testhelpers.SetupSQLiteDB(t)
	media := t.TempDir()
	access, err := service.NewAccessControl()
	require.NoError(t, err)

	authSvc := service.NewAuthService(db, "test-secret", time.Hour, service.NewMemoryDenylist())
	userSvc := service.NewUserService(db)
	presenter := api.NewPresenter(service.NewViewerService(db))

	var createLimit gin.HandlerFunc
	if limiter != nil {
		createLimit = middleware.RateLimit("recipe_creation", limiter, 1)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery())
	group := router.Group("/api")
	group.Use(middleware.OptionalAuth(authSvc))

	api.NewAuthHandler(authSvc).RegisterRoutes(group)
	api.NewUserHandler(authSvc, userSvc, service.NewFollowService(db), presenter, service.DefaultPageSize).RegisterRoutes(group)
	api.NewTagHandler(service.NewTagService(db)).RegisterRoutes(group)
	api.NewIngredientHandler(service.NewIngredientService(db)).RegisterRoutes(group)
	api.NewRecipeHandler(api.RecipeServices{
		Recipes:      service.NewRecipeService(db, access),
		Favorites:    service.NewToggleService(db, service.NewFavoriteStore(db)),
		ShoppingCart: service.NewToggleService(db, service.NewShoppingCartStore(db)),
		ShoppingList: service.NewShoppingListService(db),
		Images:       service.NewImageService(service.NewLocalStore(media, "/media")),
	}, presenter, service.DefaultPageSize, createLimit).
		WithClock(func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }).
		RegisterRoutes(group)

	return &testAPI{t: t, db: db, auth: authSvc, router: router, media: media}
}

// storedImages lists the files written to the media directory
func (a *testAPI) storedImages() []string {
	a.t.Helper()
	var files []string
	err := filepath.WalkDir(a.media, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(a.t, err)
	return files
}

// tokenFor issues a token for user
func (a *testAPI) tokenFor(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(user.ID)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
