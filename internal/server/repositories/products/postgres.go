// Package products stores the product catalog in PostgreSQL.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

const productColumns = `id, user_id, name, price, image, stock, category, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	p := &models.Product{}
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Price, &p.Image, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE id = $1`

	return oneOrNotFound(scanProduct(r.db.QueryRowContext(ctx, query, id)))
}

func (r *PostgresRepository) LockForSale(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE id = $1
		FOR UPDATE`

	return oneOrNotFound(scanProduct(r.db.QueryRowContext(ctx, query, id)))
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {

	query :=
		`INSERT INTO products (user_id, name, price, image, stock, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.Name, p.Price, p.Image, p.Stock, p.Category).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// Update overwrites the mutable fields of the product identified by p.ID and
// owned by p.UserID.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {

	query :=
		`UPDATE products
		 SET name = $3, price = $4, image = $5, stock = $6, category = $7, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, p.ID, p.UserID, p.Name, p.Price, p.Image, p.Stock, p.Category).
		Scan(&p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM products WHERE id = $1 AND user_id = $2`

	return expectOneRow(r.db.ExecContext(ctx, query, id, userID))
}

func (r *PostgresRepository) SetStock(ctx context.Context, id string, stock int64) error {
	query := `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`

	return expectOneRow(r.db.ExecContext(ctx, query, id, stock))
}

func oneOrNotFound(p *models.Product, err error) (*models.Product, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 0:
		return common.ErrNotFound
	case 1:
		return nil
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
