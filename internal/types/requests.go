package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// CreateTagRequest represents the request body for creating a tag.
// Slug is derived from Name when omitted.
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,len=7,hexcolor"`
	Slug  string `json:"slug" binding:"omitempty,max=200,slug"`
}

// RecipeIngredientInput is one (ingredient, amount) pair of a recipe write payload
type RecipeIngredientInput struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// RecipeRequest represents the request body for creating or updating a recipe.
// Image is a data URI; it may be omitted on update to keep the current image.
type RecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []uuid.UUID             `json:"tags" binding:"required,min=1"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name" binding:"required,max=200"`
	Text        string                  `json:"text" binding:"required"`
	CookingTime int                     `json:"cooking_time"`
}
