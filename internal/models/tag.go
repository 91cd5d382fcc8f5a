package models

// Tag is a coloured label such as breakfast, lunch or dinner
type Tag struct {
	Base
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"`
}
