package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"compliance-tracker/internal/model"
)

// ProfileRepository stores per-owner metadata.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert finds or creates the profile for an owner and refreshes its role.
// A zero chatID keeps any previously stored delivery channel.
func (r *ProfileRepository) Upsert(ctx context.Context, ownerID, role string, chatID int64) (*model.Profile, error) {
	var profile model.Profile
	db := r.db.WithContext(ctx)
	err := db.Where("owner_id = ?", ownerID).First(&profile).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{"role": role}
		if chatID != 0 {
			updates["telegram_chat_id"] = chatID
		}
		if err := db.Model(&profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		profile.Role = role
		if chatID != 0 {
			profile.TelegramChatID = chatID
		}
		return &profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = model.Profile{
			OwnerID:        ownerID,
			Role:           role,
			TelegramChatID: chatID,
		}
		if err := db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return &profile, nil
	default:
		return nil, fmt.Errorf("find profile: %w", err)
	}
}

func (r *ProfileRepository) FindByOwner(ctx context.Context, ownerID string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) ListAll(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.db.WithContext(ctx).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}
