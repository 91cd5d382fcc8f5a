package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the primary key shared by every entity. IDs are generated
// client side so that the same code runs on PostgreSQL and SQLite.
type Base struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
}

// BeforeCreate assigns a new UUID when none was set
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Owned is implemented by resources that belong to a single user
type Owned interface {
	OwnerID() uuid.UUID
}

// All lists every entity, in dependency order, for auto-migration
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&IngredientAmount{},
		&TagAssignment{},
		&Follow{},
		&Favorite{},
		&ShoppingCart{},
	}
}
