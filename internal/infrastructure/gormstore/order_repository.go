package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/delus-studio/storefront/internal/domain/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert stores the order and its lines in one transaction.
func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("orders: id is required")
	}
	row := orderFromDomain(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&orderRecord{}).
			Where("checkout_session_id = ? OR id = ?", o.CheckoutSessionID, o.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return order.ErrConflict
		}
		return tx.Create(&row).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, order.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return order.ErrConflict
	default:
		return fmt.Errorf("orders: insert: %w", err)
	}
}

func (r *OrderRepository) FindBySession(ctx context.Context, sessionID string) (*order.Order, error) {
	var row orderRecord
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("checkout_session_id = ?", sessionID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: find by session: %w", err)
	}
	return row.toDomain(), nil
}

// Update rewrites the order status and replaces its lines in one transaction.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	const op = "orders.Update"

	if o == nil || o.ID == "" {
		return fmt.Errorf("%s: id is required", op)
	}
	row := orderFromDomain(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderRecord{}).Where("id = ?", o.ID).Update("status", row.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return order.ErrNotFound
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&orderLineRecord{}).Error; err != nil {
			return err
		}
		if len(row.Lines) == 0 {
			return nil
		}
		return tx.Create(&row.Lines).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, order.ErrNotFound):
		return order.ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
