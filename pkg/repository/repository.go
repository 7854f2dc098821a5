// Package repository provides a small generic gorm-backed store shared by
// feature repositories for plain filter-style access.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the minimal generic persistence surface.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Find(ctx context.Context, filter *T) ([]*T, error)
	First(ctx context.Context, filter *T) (*T, error)
	Count(ctx context.Context, filter *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository for T over the given connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Find(ctx context.Context, filter *T) ([]*T, error) {
	var out []*T
	err := s.db.WithContext(ctx).Where(filter).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[T]) First(ctx context.Context, filter *T) (*T, error) {
	var out T
	err := s.db.WithContext(ctx).Where(filter).First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Count(ctx context.Context, filter *T) (int64, error) {
	var model T
	var count int64
	err := s.db.WithContext(ctx).Model(&model).Where(filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
