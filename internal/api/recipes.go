package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

// RecipeServices groups what the recipe handler depends on
type RecipeServices struct {
	Recipes      service.IRecipeService
	Favorites    service.IToggleService
	ShoppingCart service.IToggleService
	ShoppingList service.IShoppingListService
	Images       service.IImageService
}

type RecipeHandler struct {
	services  RecipeServices
	presenter *Presenter
	pageSize  int
	// createLimit guards recipe creation; nil disables it
	createLimit gin.HandlerFunc
	now         service.Clock
}

func NewRecipeHandler(services RecipeServices, presenter *Presenter, pageSize int, createLimit gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{
		services:    services,
		presenter:   presenter,
		pageSize:    pageSize,
		createLimit: createLimit,
		now:         time.Now,
	}
}

// WithClock sets the clock used to date shopping lists
func (h *RecipeHandler) WithClock(now service.Clock) *RecipeHandler {
	h.now = now
	return h
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{middleware.RequireAuth()}
	if h.createLimit != nil {
		create = append(create, h.createLimit)
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", h.ListRecipes)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id/", h.GetRecipe)
		recipes.PATCH("/:id/", middleware.RequireAuth(), h.UpdateRecipe)
		recipes.DELETE("/:id/", middleware.RequireAuth(), h.DeleteRecipe)
		recipes.POST("/:id/favorite/", middleware.RequireAuth(), h.addTo(h.services.Favorites))
		recipes.DELETE("/:id/favorite/", middleware.RequireAuth(), h.removeFrom(h.services.Favorites))
		recipes.POST("/:id/shopping_cart/", middleware.RequireAuth(), h.addTo(h.services.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart/", middleware.RequireAuth(), h.removeFrom(h.services.ShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Tags:             queryList(c, "tags"),
		IsFavorited:      queryBool(c, "is_favorited"),
		IsInShoppingCart: queryBool(c, "is_in_shopping_cart"),
		Viewer:           middleware.Viewer(c),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, fieldError{Error: "author must be a valid id", Field: "author"})
			return
		}
		filter.AuthorID = &id
	}

	ctx := c.Request.Context()
	page := pageFromQuery(c, h.pageSize)
	recipes, total, err := h.services.Recipes.List(ctx, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.presenter.Recipes(ctx, filter.Viewer, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, page, total, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	recipe, err := h.services.Recipes.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.presenter.Recipe(ctx, middleware.Viewer(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// recipeInput binds the write payload and stores a new image if one was sent.
// The image is stored only once the rest of the payload is valid.
func (h *RecipeHandler) recipeInput(c *gin.Context, creating bool) (*service.RecipeInput, bool) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return nil, false
	}

	in := &service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        req.Tags,
		Ingredients: req.Ingredients,
	}

	if req.Image == "" {
		if creating {
			respondError(c, service.NewValidationError("image", "image is required"))
			return nil, false
		}
		return in, true
	}

	if err := h.services.Recipes.Validate(c.Request.Context(), in); err != nil {
		respondError(c, err)
		return nil, false
	}

	url, err := h.services.Images.SaveDataURI(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	in.Image = url
	return in, true
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	in, ok := h.recipeInput(c, true)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID, _ := middleware.UserID(c)
	recipe, err := h.services.Recipes.Create(ctx, userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecipesCreated.Inc()

	resp, err := h.presenter.Recipe(ctx, &userID, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateRecipe replaces the recipe's fields, tags and ingredients
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID, _ := middleware.UserID(c)

	// Ownership is settled before any image is stored.
	if err := h.services.Recipes.Authorize(ctx, userID, id, service.ActionWrite); err != nil {
		respondError(c, err)
		return
	}

	in, ok := h.recipeInput(c, false)
	if !ok {
		return
	}

	recipe, err := h.services.Recipes.Update(ctx, userID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.presenter.Recipe(ctx, &userID, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.services.Recipes.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addTo(toggle service.IToggleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}

		userID, _ := middleware.UserID(c)
		recipe, err := toggle.Add(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, types.NewRecipeSummary(recipe))
	}
}

func (h *RecipeHandler) removeFrom(toggle service.IToggleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}

		userID, _ := middleware.UserID(c)
		if err := toggle.Remove(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated ingredients of the caller's cart
// as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	list, err := h.services.ShoppingList.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.ShoppingListDownloads.Inc()

	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list.Render(h.now())))
}
