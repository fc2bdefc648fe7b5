package catalog

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Category    string     `json:"category,omitempty"`
	BasePrice   float64    `json:"basePrice"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Stock       int        `json:"stock"`
	TotalSold   int        `json:"totalSold"`
	IsDeal      bool       `json:"isDeal"`
	DealEnd     *time.Time `json:"dealEnd,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
