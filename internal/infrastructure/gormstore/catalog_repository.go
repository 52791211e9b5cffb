package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/delus-studio/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]*catalog.Product, error) {
	return r.ListLimit(ctx, 0)
}

func (r *ProductRepository) ListLimit(ctx context.Context, n int) ([]*catalog.Product, error) {
	var rows []productRecord
	q := r.db.WithContext(ctx).Order("id")
	if n > 0 {
		q = q.Limit(n)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	out := make([]*catalog.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	var row productRecord
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("products: get %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	var row productRecord
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("products: find by name: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("products: count: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	if p.Stock < 0 {
		return catalog.ErrInvalidStock
	}
	row := productFromDomain(p)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("products: create: %w", err)
	}
	p.ID, p.CreatedAt = row.ID, row.CreatedAt
	return nil
}

// DecrementStock runs a single conditional UPDATE so concurrent callers never drive stock below zero.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, catalog.ErrInvalidQuantity
	}
	db := r.db.WithContext(ctx)
	res := db.Model(&productRecord{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", quantity, quantity))
	if res.Error != nil {
		return 0, fmt.Errorf("products: decrement %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, catalog.ErrNotFound
	}

	var row productRecord
	if err := db.Select("stock").First(&row, id).Error; err != nil {
		return 0, fmt.Errorf("products: reload %d: %w", id, err)
	}
	return row.Stock, nil
}

type TrackRepository struct {
	db *gorm.DB
}

func NewTrackRepository(db *gorm.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

func (r *TrackRepository) List(ctx context.Context) ([]*catalog.Track, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

func (r *TrackRepository) Featured(ctx context.Context) (*catalog.Track, error) {
	var row trackRecord
	err := r.db.WithContext(ctx).Where("featured = ?", true).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tracks: featured: %w", err)
	}
	return row.toDomain(), nil
}

func (r *TrackRepository) Releases(ctx context.Context) ([]*catalog.Track, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("is_release = ?", true))
}

func (r *TrackRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&trackRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("tracks: count: %w", err)
	}
	return n, nil
}

func (r *TrackRepository) Create(ctx context.Context, t *catalog.Track) error {
	row := trackFromDomain(t)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("tracks: create: %w", err)
	}
	t.ID, t.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *TrackRepository) find(_ context.Context, q *gorm.DB) ([]*catalog.Track, error) {
	var rows []trackRecord
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("tracks: list: %w", err)
	}
	out := make([]*catalog.Track, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
