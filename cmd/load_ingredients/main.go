// Command load_ingredients imports the ingredient catalogue from a JSON file
// of {"name", "measurement_unit"} objects or a two-column CSV file.
// Existing (name, unit) pairs are left untouched, so it can be rerun.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func main() {
	path := flag.String("file", "data/ingredients.json", "JSON or CSV file to import")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	f, err := os.Open(*path)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *path).Msg("failed to open ingredient file")
	}
	defer f.Close()

	ingredients, err := parseIngredients(f, formatOf(*path))
	if err != nil {
		logging.Fatal().Err(err).Str("file", *path).Msg("failed to parse ingredient file")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.DBDriver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	inserted, err := service.NewIngredientService(db).Import(ctx, ingredients)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to import ingredients")
	}

	logging.Info().
		Int("read", len(ingredients)).
		Int64("inserted", inserted).
		Msg("ingredients imported")
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "json"
}

// parseIngredients reads ingredients in the given format ("json" or "csv")
func parseIngredients(r io.Reader, format string) ([]models.Ingredient, error) {
	var records []ingredientRecord

	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	case "csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = 2
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		for _, row := range rows {
			records = append(records, ingredientRecord{Name: row[0], MeasurementUnit: row[1]})
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	out := make([]models.Ingredient, 0, len(records))
	for _, rec := range records {
		out = append(out, models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit})
	}
	return out, nil
}
