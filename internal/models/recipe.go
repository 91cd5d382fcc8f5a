package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Recipe struct {
	Base
	AuthorID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Image       string    `gorm:"size:500;not null" json:"image"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:chk_recipe_cooking_time,cooking_time > 0" json:"cooking_time"`
	PubDate     time.Time `gorm:"autoCreateTime;index" json:"pub_date"`

	Author            User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	TagAssignments    []TagAssignment    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	IngredientAmounts []IngredientAmount `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Recipe) OwnerID() uuid.UUID {
	return r.AuthorID
}

// Tags returns the tags attached through the preloaded assignments, by name
func (r *Recipe) Tags() []Tag {
	tags := make([]Tag, 0, len(r.TagAssignments))
	for _, a := range r.TagAssignments {
		tags = append(tags, a.Tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// IngredientAmount links a recipe to an ingredient with a quantity
type IngredientAmount struct {
	Base
	RecipeID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	IngredientID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Amount       int       `gorm:"not null;check:chk_ingredient_amount_positive,amount > 0" json:"amount"`
	Position     int       `gorm:"not null" json:"-"`

	Ingredient Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TagAssignment links a recipe to a tag
type TagAssignment struct {
	Base
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_tag_assignment_pair" json:"-"`
	TagID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_tag_assignment_pair" json:"-"`

	Tag Tag `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// DefaultRecipeOrder lists the newest recipes first
const DefaultRecipeOrder = "recipes.pub_date DESC, recipes.id"
