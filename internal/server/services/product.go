package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ProductInput is the payload of a product creation.
type ProductInput struct {
	Name     string
	Price    float64
	Image    string
	Stock    int64
	Category string
}

// ProductService manages the caller's own catalog. Every operation is scoped
// to the user id taken from the verified session.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager) *ProductService {
	return &ProductService{db: db, repomanager: m}
}

// List returns the products owned by userID.
func (s *ProductService) List(ctx context.Context, userID string) ([]*models.Product, error) {
	userID, err := sessionUserID(userID)
	if err != nil {
		return nil, err
	}
	products, err := s.repomanager.Products(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return products, nil
}

// Create stores a new product owned by userID. A zero price or stock counts
// as missing.
func (s *ProductService) Create(ctx context.Context, userID string, in ProductInput) (*models.Product, error) {
	userID, err := sessionUserID(userID)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		UserID:   userID,
		Name:     strings.TrimSpace(in.Name),
		Price:    common.RoundCents(in.Price),
		Image:    strings.TrimSpace(in.Image),
		Stock:    in.Stock,
		Category: strings.TrimSpace(in.Category),
	}
	if p.Name == "" || p.Image == "" || p.Category == "" || p.Price <= 0 || p.Stock <= 0 {
		return nil, common.Invalid("Please provide all fields")
	}

	created, err := s.repomanager.Products(s.db).Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	return created, nil
}

// Update applies patch to a product owned by userID.
func (s *ProductService) Update(ctx context.Context, userID, productID string, patch models.ProductPatch) (*models.Product, error) {
	userID, err := sessionUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	repo := s.repomanager.Products(s.db)
	p, err := s.owned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return p, nil
	}

	patch.Apply(p)
	return repo.Update(ctx, p)
}

// Delete removes a product owned by userID.
func (s *ProductService) Delete(ctx context.Context, userID, productID string) error {
	userID, err := sessionUserID(userID)
	if err != nil {
		return err
	}
	p, err := s.owned(ctx, userID, productID)
	if err != nil {
		return err
	}
	return s.repomanager.Products(s.db).Delete(ctx, p.ID, userID)
}

// RecordSale decrements stock for every line in one transaction and returns
// the updated products with the sale total. Lines naming the same product
// are merged. If any product lacks stock nothing is written.
func (s *ProductService) RecordSale(ctx context.Context, userID string, lines []models.SaleLine) (*models.Sale, error) {
	userID, err := sessionUserID(userID)
	if err != nil {
		return nil, err
	}
	qty, ids, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	sale := &models.Sale{}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Products(tx)
		var total float64

		// Locks are taken in id order so concurrent sales cannot deadlock.
		for _, id := range ids {
			p, err := repo.LockForSale(ctx, id)
			if err != nil {
				return err
			}
			if p.UserID != userID {
				return common.ErrForbidden
			}
			if p.Stock < qty[id] {
				return fmt.Errorf("%w: %q has %d left", common.ErrInsufficientStock, p.Name, p.Stock)
			}

			p.Stock -= qty[id]
			if err := repo.SetStock(ctx, id, p.Stock); err != nil {
				return err
			}

			total += p.Price * float64(qty[id])
			sale.Products = append(sale.Products, p)
		}

		sale.Total = common.RoundCents(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// owned loads productID and checks it belongs to userID. Ids that cannot
// name a product are reported as not found.
func (s *ProductService) owned(ctx context.Context, userID, productID string) (*models.Product, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, common.ErrNotFound
	}
	p, err := s.repomanager.Products(s.db).GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, common.ErrForbidden
	}
	return p, nil
}

func validatePatch(p *models.ProductPatch) error {
	for _, f := range []*string{p.Name, p.Image, p.Category} {
		if f == nil {
			continue
		}
		*f = strings.TrimSpace(*f)
		if *f == "" {
			return common.Invalid("Fields must not be empty")
		}
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return common.Invalid("Price must not be negative")
		}
		v := common.RoundCents(*p.Price)
		p.Price = &v
	}
	if p.Stock != nil && *p.Stock < 0 {
		return common.Invalid("Stock must not be negative")
	}
	return nil
}

func mergeLines(lines []models.SaleLine) (map[string]int64, []string, error) {
	if len(lines) == 0 {
		return nil, nil, common.Invalid("No items to sell")
	}

	qty := make(map[string]int64, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, nil, common.Invalid("Quantity must be positive")
		}
		id, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, nil, common.ErrNotFound
		}
		if qty[id.String()] > math.MaxInt64-l.Quantity {
			return nil, nil, common.Invalid("Quantity too large")
		}
		qty[id.String()] += l.Quantity
	}

	ids := make([]string, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return qty, ids, nil
}
