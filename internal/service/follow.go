package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow subscribes userID to authorID and returns the author.
// Following yourself or following twice is a validation error.
func (s *FollowService) Follow(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, "id = ?", authorID).Error; err != nil {
		return nil, notFound(err, "user")
	}

	if userID == authorID {
		return nil, NewValidationError("author", "you cannot subscribe to yourself")
	}

	following, err := s.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, NewValidationError("author", "you are already subscribed to this author")
	}

	if err := db.Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error; err != nil {
		if isDuplicate(err) {
			return nil, NewValidationError("author", "you are already subscribed to this author")
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Str("author_id", authorID.String()).
		Msg("subscribed")
	return &author, nil
}

// Unfollow removes the subscription; it must exist
func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, "id = ?", authorID).Error; err != nil {
		return notFound(err, "user")
	}

	result := db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %w", ErrNotFound)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return count > 0, nil
}
