package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("catalog: not found")
	ErrInvalidQuantity = errors.New("catalog: quantity must be greater than zero")
	ErrInvalidStock    = errors.New("catalog: stock must be zero or greater")
	ErrMissingFile     = errors.New("catalog: no file provided")
	ErrUnsupportedFile = errors.New("catalog: file type not allowed")
)

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewProduct(name, description string, price float64, imageURL, category string, stock int) (*Product, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		Category:    category,
		Stock:       stock,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// DecrementStock removes quantity units, flooring stock at zero.
// It returns the number of units actually removed.
func (p *Product) DecrementStock(quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	removed := min(quantity, p.Stock)
	p.Stock -= removed
	return removed, nil
}

type SourceType string

const (
	SourceLocal      SourceType = "local"
	SourceSoundCloud SourceType = "soundcloud"
)

type Track struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	CoverURL   string     `json:"cover_url"`
	AudioURL   string     `json:"audio_url"`
	SourceType SourceType `json:"source_type"`
	Featured   bool       `json:"featured"`
	IsRelease  bool       `json:"is_release"`
	CreatedAt  time.Time  `json:"created_at"`
}
