package gormstore

import (
	"time"

	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/domain/order"
)

type productRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:100;not null;index"`
	Description string    `gorm:"type:text"`
	Price       float64   `gorm:"not null"`
	ImageURL    string    `gorm:"size:200"`
	Category    string    `gorm:"size:50"`
	Stock       int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (productRecord) TableName() string { return "products" }

func (r productRecord) toDomain() *catalog.Product {
	return &catalog.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Stock:       r.Stock,
		CreatedAt:   r.CreatedAt,
	}
}

func productFromDomain(p *catalog.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

type trackRecord struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Title      string    `gorm:"size:100;not null"`
	Artist     string    `gorm:"size:100;not null"`
	CoverURL   string    `gorm:"size:200"`
	AudioURL   string    `gorm:"size:200"`
	SourceType string    `gorm:"size:20;default:local"`
	Featured   bool      `gorm:"default:false;index"`
	IsRelease  bool      `gorm:"default:false;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (trackRecord) TableName() string { return "tracks" }

func (r trackRecord) toDomain() *catalog.Track {
	return &catalog.Track{
		ID:         r.ID,
		Title:      r.Title,
		Artist:     r.Artist,
		CoverURL:   r.CoverURL,
		AudioURL:   r.AudioURL,
		SourceType: catalog.SourceType(r.SourceType),
		Featured:   r.Featured,
		IsRelease:  r.IsRelease,
		CreatedAt:  r.CreatedAt,
	}
}

func trackFromDomain(t *catalog.Track) trackRecord {
	return trackRecord{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		CoverURL:   t.CoverURL,
		AudioURL:   t.AudioURL,
		SourceType: string(t.SourceType),
		Featured:   t.Featured,
		IsRelease:  t.IsRelease,
		CreatedAt:  t.CreatedAt,
	}
}

type orderRecord struct {
	ID                string            `gorm:"primaryKey;size:36"`
	CheckoutSessionID string            `gorm:"size:255;not null;uniqueIndex"`
	EventID           string            `gorm:"size:255"`
	CustomerEmail     string            `gorm:"size:255"`
	Status            string            `gorm:"size:32;not null"`
	Lines             []orderLineRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `gorm:"autoCreateTime"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"size:36;not null;index"`
	Description string `gorm:"size:255"`
	ProductID   int64
	Quantity    int64
	Matched     bool
}

func (orderLineRecord) TableName() string { return "order_lines" }

func (r orderRecord) toDomain() *order.Order {
	o := &order.Order{
		ID:                r.ID,
		CheckoutSessionID: r.CheckoutSessionID,
		EventID:           r.EventID,
		CustomerEmail:     r.CustomerEmail,
		Status:            order.Status(r.Status),
		CreatedAt:         r.CreatedAt,
	}
	for _, l := range r.Lines {
		o.Lines = append(o.Lines, order.Line{
			Description: l.Description,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Matched:     l.Matched,
		})
	}
	return o
}

func orderFromDomain(o *order.Order) orderRecord {
	r := orderRecord{
		ID:                o.ID,
		CheckoutSessionID: o.CheckoutSessionID,
		EventID:           o.EventID,
		CustomerEmail:     o.CustomerEmail,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
	}
	for _, l := range o.Lines {
		r.Lines = append(r.Lines, orderLineRecord{
			OrderID:     o.ID,
			Description: l.Description,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Matched:     l.Matched,
		})
	}
	return r
}
