package products

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id, userID string) error
	// LockForSale reads a product and holds a row lock on it until the
	// surrounding transaction ends.
	LockForSale(ctx context.Context, id string) (*models.Product, error)
	SetStock(ctx context.Context, id string, stock int64) error
}
