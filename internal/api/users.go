package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	authService   service.IAuthService
	userService   service.IUserService
	followService service.IFollowService
	presenter     *Presenter
	pageSize      int
}

func NewUserHandler(
	authService service.IAuthService,
	userService service.IUserService,
	followService service.IFollowService,
	presenter *Presenter,
	pageSize int,
) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		followService: followService,
		presenter:     presenter,
		pageSize:      pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/", h.ListUsers)
		users.POST("/", h.Register)
		users.GET("/me/", middleware.RequireAuth(), h.Me)
		users.POST("/set_password/", middleware.RequireAuth(), h.SetPassword)
		users.GET("/subscriptions/", middleware.RequireAuth(), h.Subscriptions)
		users.GET("/:id/", h.GetUser)
		users.POST("/:id/subscribe/", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe/", middleware.RequireAuth(), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	page := pageFromQuery(c, h.pageSize)

	users, total, err := h.userService.List(ctx, page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.presenter.Users(ctx, middleware.Viewer(c), users)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, page, total, results))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	logging.Ctx(c.Request.Context()).Info().Str("user_id", user.ID.String()).Msg("user registered")
	c.JSON(http.StatusCreated, types.RegisteredUser{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewUserResponse(user, false))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.authService.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.presenter.User(ctx, middleware.Viewer(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Subscriptions lists the authors the caller follows with their recipes
func (h *UserHandler) Subscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := middleware.UserID(c)
	page := pageFromQuery(c, h.pageSize)

	authors, total, err := h.userService.Subscriptions(ctx, userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	recipesLimit, _ := queryInt(c, "recipes_limit")
	results, err := h.presenter.Subscriptions(ctx, h.userService, userID, authors, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, page, total, results))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID, _ := middleware.UserID(c)
	author, err := h.followService.Follow(ctx, userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	recipesLimit, _ := queryInt(c, "recipes_limit")
	results, err := h.presenter.Subscriptions(ctx, h.userService, userID, []models.User{*author}, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, results[0])
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := paramID(c)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.followService.Unfollow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
