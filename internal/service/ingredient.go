package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns ingredients whose name contains name, ignoring case
func (s *IngredientService) List(ctx context.Context, name string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if name = strings.TrimSpace(name); name != "" {
		query = query.Where(`search_name LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(name))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Order("name").Order("measurement_unit").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "ingredient")
	}
	return &ingredient, nil
}

// Import inserts the ingredients that are not already in the catalogue and
// returns how many rows were added
func (s *IngredientService) Import(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	rows := make([]models.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.MeasurementUnit = strings.TrimSpace(ing.MeasurementUnit)
		if ing.Name == "" || ing.MeasurementUnit == "" {
			continue
		}
		rows = append(rows, models.Ingredient{Name: ing.Name, MeasurementUnit: ing.MeasurementUnit, SearchName: strings.ToLower(ing.Name)})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 500)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", result.Error)
	}
	return result.RowsAffected, nil
}
