package api_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeAPI struct {
	*testAPI
	author *models.User
	other  *models.User
	token  string
	lunch  *models.Tag
	dinner *models.Tag
	flour  *models.Ingredient
	sugar  *models.Ingredient
}

func newRecipeAPI(t *testing.T) *recipeAPI {
	a := newTestAPI(t)
	author := testhelpers.CreateUser(t, a.db, "author")
	return &recipeAPI{
		testAPI: a,
		author:  author,
		other:   testhelpers.CreateUser(t, a.db, "other"),
		token:   a.tokenFor(author),
		lunch:   testhelpers.CreateTag(t, a.db, "lunch", "#49B64E"),
		dinner:  testhelpers.CreateTag(t, a.db, "dinner", "#8775D2"),
		flour:   testhelpers.CreateIngredient(t, a.db, "flour", "g"),
		sugar:   testhelpers.CreateIngredient(t, a.db, "sugar", "g"),
	}
}

func (r *recipeAPI) payload() gin.H {
	return gin.H{
		"name":         "Cake",
		"text":         "Bake it.",
		"cooking_time": 45,
		"image":        pngDataURI(),
		"tags":         []string{r.lunch.ID.String()},
		"ingredients": []gin.H{
			{"id": r.flour.ID.String(), "amount": 300},
			{"id": r.sugar.ID.String(), "amount": 100},
		},
	}
}

func TestCreateRecipe(t *testing.T) {
	r := newRecipeAPI(t)

	w := r.do(http.MethodPost, "/api/recipes/", r.token, r.payload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	recipe := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Cake", recipe.Name)
	assert.Equal(t, r.author.ID, recipe.Author.ID)
	assert.True(t, strings.HasPrefix(recipe.Image, "/media/recipes/images/"))
	assert.True(t, strings.HasSuffix(recipe.Image, ".png"))
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredient{ID: r.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 300}, recipe.Ingredients[0])
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "lunch", recipe.Tags[0].Slug)
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)
}

func TestCreateRecipeRejections(t *testing.T) {
	r := newRecipeAPI(t)

	tests := []struct {
		name   string
		modify func(gin.H)
		field  string
	}{
		{"missing image", func(b gin.H) { delete(b, "image") }, "image"},
		{"not a data uri", func(b gin.H) { b["image"] = "http://x/y.png" }, "image"},
		{"zero cooking time", func(b gin.H) { b["cooking_time"] = 0 }, "cooking_time"},
		{"no ingredients", func(b gin.H) { b["ingredients"] = []gin.H{} }, "ingredients"},
		{"no tags", func(b gin.H) { b["tags"] = []string{} }, "tags"},
		{"unknown tag", func(b gin.H) { b["tags"] = []string{uuid.NewString()} }, "tags"},
		{"zero amount", func(b gin.H) {
			b["ingredients"] = []gin.H{{"id": r.flour.ID.String(), "amount": 0}}
		}, "ingredients"},
		{"unknown ingredient", func(b gin.H) {
			b["ingredients"] = []gin.H{{"id": uuid.NewString(), "amount": 1}}
		}, "ingredients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := r.payload()
			tt.modify(body)

			w := r.do(http.MethodPost, "/api/recipes/", r.token, body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.field, decode[map[string]string](t, w)["field"])
		})
	}

	var count int64
	require.NoError(t, r.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, r.storedImages(), "rejected payloads must not store an image")

	w := r.do(http.MethodPost, "/api/recipes/", "", r.payload())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	r := newRecipeAPI(t)
	recipe := testhelpers.CreateRecipe(t, r.db, r.author, "Bread", []*models.Tag{r.lunch},
		testhelpers.Amount{Ingredient: r.flour, Amount: 500})
	path := "/api/recipes/" + recipe.ID.String() + "/"

	update := gin.H{
		"name":         "Sweet bread",
		"text":         "Knead longer.",
		"cooking_time": 90,
		"tags":         []string{r.dinner.ID.String()},
		"ingredients":  []gin.H{{"id": r.sugar.ID.String(), "amount": 50}},
	}

	w := r.do(http.MethodPatch, path, r.tokenFor(r.other), update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = r.do(http.MethodPatch, path, r.token, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Sweet bread", updated.Name)
	assert.Equal(t, recipe.Image, updated.Image)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "sugar", updated.Ingredients[0].Name)

	w = r.do(http.MethodDelete, path, r.tokenFor(r.other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = r.do(http.MethodDelete, path, r.token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = r.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = r.do(http.MethodDelete, path, r.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecipeRejectionStoresNoImage(t *testing.T) {
	r := newRecipeAPI(t)
	recipe := testhelpers.CreateRecipe(t, r.db, r.author, "Bread", []*models.Tag{r.lunch},
		testhelpers.Amount{Ingredient: r.flour, Amount: 500})

	body := r.payload()
	body["tags"] = []string{uuid.NewString()}
	w := r.do(http.MethodPatch, "/api/recipes/"+recipe.ID.String()+"/", r.token, body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "tags", decode[map[string]string](t, w)["field"])
	assert.Empty(t, r.storedImages())

	w = r.do(http.MethodPatch, "/api/recipes/"+recipe.ID.String()+"/", r.token, r.payload())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, r.storedImages(), 1)
}

func TestDeleteRecipeLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	r := newRecipeAPI(t)
	recipe := testhelpers.CreateRecipe(t, r.db, r.author, "Bread", []*models.Tag{r.lunch},
		testhelpers.Amount{Ingredient: r.flour, Amount: 500})

	w := r.do(http.MethodDelete, "/api/recipes/"+recipe.ID.String()+"/", r.token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, strings.Count(buf.String(), "recipe deleted"))
}

func TestListRecipesFilters(t *testing.T) {
	r := newRecipeAPI(t)
	testhelpers.CreateRecipe(t, r.db, r.author, "Soup", []*models.Tag{r.lunch})
	testhelpers.CreateRecipe(t, r.db, r.author, "Stew", []*models.Tag{r.dinner})
	pie := testhelpers.CreateRecipe(t, r.db, r.other, "Pie", nil)
	require.NoError(t, r.db.Create(&models.Favorite{UserID: r.author.ID, RecipeID: pie.ID}).Error)

	names := func(path, token string) []string {
		w := r.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		page := decode[types.Paginated[types.RecipeResponse]](t, w)
		out := make([]string, 0, len(page.Results))
		for _, rec := range page.Results {
			out = append(out, rec.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Soup", "Stew"}, names("/api/recipes/?tags=lunch,dinner", ""))
	assert.ElementsMatch(t, []string{"Soup", "Stew"}, names("/api/recipes/?tags=lunch&tags=dinner", ""))
	assert.ElementsMatch(t, []string{"Soup"}, names("/api/recipes/?tags=lunch", ""))
	assert.ElementsMatch(t, []string{"Pie"}, names("/api/recipes/?author="+r.other.ID.String(), ""))
	assert.ElementsMatch(t, []string{"Pie"}, names("/api/recipes/?is_favorited=1", r.token))
	assert.ElementsMatch(t, []string{"Pie"}, names("/api/recipes/?is_favorited=true", r.token))
	assert.ElementsMatch(t, []string{"Soup", "Stew", "Pie"}, names("/api/recipes/?is_favorited=1", ""))
	assert.ElementsMatch(t, []string{"Soup", "Stew", "Pie"}, names("/api/recipes/?is_favorited=0", r.token))

	w := r.do(http.MethodGet, "/api/recipes/?author=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = r.do(http.MethodGet, "/api/recipes/"+pie.ID.String()+"/", r.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.RecipeResponse](t, w).IsFavorited)
}

func TestFavoriteAndCartToggles(t *testing.T) {
	r := newRecipeAPI(t)
	recipe := testhelpers.CreateRecipe(t, r.db, r.other, "Pie", nil)

	for _, kind := range []string{"favorite", "shopping_cart"} {
		t.Run(kind, func(t *testing.T) {
			path := "/api/recipes/" + recipe.ID.String() + "/" + kind + "/"

			for i := 0; i < 2; i++ {
				w := r.do(http.MethodPost, path, r.token, nil)
				require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
				summary := decode[types.RecipeSummary](t, w)
				assert.Equal(t, "Pie", summary.Name)
			}

			w := r.do(http.MethodDelete, path, r.token, nil)
			assert.Equal(t, http.StatusNoContent, w.Code)

			w = r.do(http.MethodDelete, path, r.token, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = r.do(http.MethodPost, "/api/recipes/"+uuid.NewString()+"/"+kind+"/", r.token, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	r := newRecipeAPI(t)
	pancakes := testhelpers.CreateRecipe(t, r.db, r.other, "Pancakes", nil,
		testhelpers.Amount{Ingredient: r.flour, Amount: 200},
		testhelpers.Amount{Ingredient: r.sugar, Amount: 20})
	require.NoError(t, r.db.Model(pancakes).Update("pub_date", time.Now().Add(-time.Hour)).Error)
	cookies := testhelpers.CreateRecipe(t, r.db, r.other, "Cookies", nil,
		testhelpers.Amount{Ingredient: r.sugar, Amount: 80},
		testhelpers.Amount{Ingredient: r.flour, Amount: 100})

	for _, rec := range []*models.Recipe{pancakes, cookies} {
		w := r.do(http.MethodPost, "/api/recipes/"+rec.ID.String()+"/shopping_cart/", r.token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := r.do(http.MethodGet, "/api/recipes/download_shopping_cart/", r.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	want := strings.Join([]string{
		"FoodGram",
		"Recipes selected: 2",
		"-------------------",
		"09-03-2024",
		"Shopping list:",
		"-------------------",
		"sugar (g) - 100",
		"flour (g) - 300",
	}, "\n")
	assert.Equal(t, want, w.Body.String())
}

func TestRecipeCreationRateLimit(t *testing.T) {
	a := newTestAPIWithLimiter(t, middleware.NewLocalRateLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 1}))
	r := &recipeAPI{testAPI: a}
	r.author = testhelpers.CreateUser(t, a.db, "author")
	r.token = a.tokenFor(r.author)
	r.lunch = testhelpers.CreateTag(t, a.db, "lunch", "#49B64E")
	r.flour = testhelpers.CreateIngredient(t, a.db, "flour", "g")
	r.sugar = testhelpers.CreateIngredient(t, a.db, "sugar", "g")

	w := r.do(http.MethodPost, "/api/recipes/", r.token, r.payload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = r.do(http.MethodPost, "/api/recipes/", r.token, r.payload())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
