package models

import "github.com/google/uuid"

// Follow records that UserID subscribes to AuthorID
type Follow struct {
	Base
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_pair;check:chk_follow_not_self,user_id <> author_id"`
	AuthorID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_pair;index"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// Favorite marks a recipe as favorited by a user
type Favorite struct {
	Base
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_pair"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_pair;index"`

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE"`
}

// ShoppingCart puts a recipe into a user's shopping cart
type ShoppingCart struct {
	Base
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_shopping_cart_pair"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_shopping_cart_pair;index"`

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}
