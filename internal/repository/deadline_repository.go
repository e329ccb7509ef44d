package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"compliance-tracker/internal/model"
)

// DeadlineRepository handles CRUD for deadlines.
type DeadlineRepository struct {
	db *gorm.DB
}

func NewDeadlineRepository(db *gorm.DB) *DeadlineRepository {
	return &DeadlineRepository{db: db}
}

// Transaction runs fn against a repository bound to a single transaction.
// Any error from fn rolls back every write made inside it.
func (r *DeadlineRepository) Transaction(ctx context.Context, fn func(*DeadlineRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DeadlineRepository{db: tx})
	})
}

func (r *DeadlineRepository) Create(ctx context.Context, deadline *model.Deadline) error {
	if err := r.db.WithContext(ctx).Create(deadline).Error; err != nil {
		return fmt.Errorf("create deadline: %w", err)
	}
	return nil
}

// CreateBatch inserts a seed batch in one statement so a failed seed leaves
// nothing behind.
func (r *DeadlineRepository) CreateBatch(ctx context.Context, deadlines []model.Deadline) error {
	if len(deadlines) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&deadlines).Error; err != nil {
		return fmt.Errorf("create deadlines: %w", err)
	}
	return nil
}

func (r *DeadlineRepository) FindByID(ctx context.Context, id string) (*model.Deadline, error) {
	var deadline model.Deadline
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&deadline).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("find deadline: %w", err)
	}
	return &deadline, nil
}

func (r *DeadlineRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Deadline, error) {
	var deadlines []model.Deadline
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("due_at ASC").
		Find(&deadlines).Error; err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	return deadlines, nil
}

func (r *DeadlineRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Deadline{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count deadlines: %w", err)
	}
	return count, nil
}

func (r *DeadlineRepository) Save(ctx context.Context, deadline *model.Deadline) error {
	if err := r.db.WithContext(ctx).Save(deadline).Error; err != nil {
		return fmt.Errorf("save deadline: %w", err)
	}
	return nil
}

// Delete removes a deadline by id. Missing ids report model.ErrNotFound.
func (r *DeadlineRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Deadline{})
	if result.Error != nil {
		return fmt.Errorf("delete deadline: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
