package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type GormRepository[T any, P Record[T]] struct {
	db *gorm.DB
}

func NewGormRepository[T any, P Record[T]](db *gorm.DB) *GormRepository[T, P] {
	return &GormRepository[T, P]{db: db}
}

func (r *GormRepository[T, P]) Create(ctx context.Context, rec *T) error {
	P(rec).Meta().ID = 0
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

func (r *GormRepository[T, P]) List(ctx context.Context, userID uint) ([]T, error) {
	out := make([]T, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

func (r *GormRepository[T, P]) Get(ctx context.Context, id, userID uint) (*T, error) {
	return r.get(r.db.WithContext(ctx), id, userID)
}

func (r *GormRepository[T, P]) Update(ctx context.Context, id, userID uint, apply func(*T) error) (*T, error) {
	var updated *T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.get(tx, id, userID)
		if err != nil {
			return err
		}
		before := *P(row).Meta()
		if err := apply(row); err != nil {
			return err
		}
		meta := P(row).Meta()
		meta.ID, meta.UserID, meta.CreatedAt = before.ID, before.UserID, before.CreatedAt
		if err := tx.Save(row).Error; err != nil {
			return fmt.Errorf("update: %w", err)
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormRepository[T, P]) Delete(ctx context.Context, id, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(new(T))
	if res.Error != nil {
		return false, fmt.Errorf("delete: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository[T, P]) get(db *gorm.DB, id, userID uint) (*T, error) {
	row := new(T)
	err := db.Where("id = ? AND user_id = ?", id, userID).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return row, nil
}
