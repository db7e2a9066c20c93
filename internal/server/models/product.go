package models

import "time"

// Product is a catalog item owned by exactly one user.
type Product struct {
	ID        string
	UserID    string
	Name      string
	Price     float64
	Image     string
	Stock     int64
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductPatch carries the fields of a partial update. Nil fields are left
// unchanged.
type ProductPatch struct {
	Name     *string
	Price    *float64
	Image    *string
	Stock    *int64
	Category *string
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Image == nil && p.Stock == nil && p.Category == nil
}

// Apply copies the non-nil fields of p onto dst.
func (p ProductPatch) Apply(dst *Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
}
