package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AuthResponse answers register and login. Token is present only when the
// server hands tokens to the client for the Authorization header.
type AuthResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
	Token   string  `json:"token,omitempty"`
}

type UserResponse struct {
	Message string  `json:"message,omitempty"`
	User    UserDTO `json:"user"`
}

type ProductDTO struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Stock     int64     `json:"stock"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductListResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Data    []ProductDTO `json:"data"`
}

type ProductResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    *ProductDTO `json:"data,omitempty"`
}

// number accepts a JSON number or a numeric string; HTML form inputs send
// the latter.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number %q", b)
	}
	*n = number(v)
	return nil
}

func (n *number) int64() (int64, bool) {
	v := float64(*n)
	if v != math.Trunc(v) || v >= 1<<63 || v < math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}

type ProductRequest struct {
	Name     *string `json:"name"`
	Price    *number `json:"price"`
	Image    *string `json:"image"`
	Stock    *number `json:"stock"`
	Category *string `json:"category"`
}

type SaleItem struct {
	ProductID string `json:"productId"`
	Quantity  number `json:"quantity"`
}

type SaleRequest struct {
	Items []SaleItem `json:"items"`
}

type SaleResponse struct {
	Success bool         `json:"success"`
	Total   float64      `json:"total"`
	Data    []ProductDTO `json:"data"`
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType"`
}

type ImageUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ImageURLResponse struct {
	URL string `json:"url"`
}

func toUserDTO(u *models.User) UserDTO {
	d := UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt
		d.CreatedAt = &t
	}
	return d
}

func toProductDTO(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:        p.ID,
		User:      p.UserID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Stock:     p.Stock,
		Category:  p.Category,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductDTOs(ps []*models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductDTO(p))
	}
	return out
}
