package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// List returns every tag ordered by name
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "tag")
	}
	return &tag, nil
}

// Create adds a tag. The slug is generated from the name when omitted.
func (s *TagService) Create(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error) {
	tag := models.Tag{
		Name:  strings.TrimSpace(req.Name),
		Slug:  req.Slug,
		Color: strings.ToUpper(req.Color),
	}
	if tag.Slug == "" {
		tag.Slug = slug.Make(tag.Name)
	}
	if tag.Slug == "" {
		return nil, NewValidationError("slug", "could not derive a slug from the name")
	}

	db := s.db.WithContext(ctx)
	for _, field := range []struct{ column, value string }{
		{"name", tag.Name},
		{"slug", tag.Slug},
		{"color", tag.Color},
	} {
		var count int64
		if err := db.Model(&models.Tag{}).Where(field.column+" = ?", field.value).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check tag %s: %w", field.column, err)
		}
		if count > 0 {
			return nil, NewValidationError(field.column, "a tag with this "+field.column+" already exists")
		}
	}

	if err := db.Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("tag %w", ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}
