package users

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}
