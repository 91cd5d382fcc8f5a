package models

import (
	"strings"

	"gorm.io/gorm"
)

type Ingredient struct {
	Base
	Name            string `gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:50;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	// SearchName is Name lower-cased in Go so that search ignores case for
	// every alphabet on both PostgreSQL and SQLite.
	SearchName string `gorm:"size:200;not null;default:'';index" json:"-"`
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = strings.ToLower(i.Name)
	return nil
}
