package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	failGet error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	for _, u := range f.byID {
		if u.Email == identifier || u.Name == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	for otherID, other := range f.byID {
		if otherID != id && other.Email == email {
			return nil, common.ErrAlreadyExists
		}
	}
	u.Name, u.Email = name, email
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeProductsRepo struct {
	mu       sync.Mutex
	byID     map[string]*models.Product
	setStock []string
	failList error
}

func newFakeProductsRepo(ps ...*models.Product) *fakeProductsRepo {
	f := &fakeProductsRepo{byID: map[string]*models.Product{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProductsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]*models.Product, 0)
	for _, p := range f.byID {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductsRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductsRepo) LockForSale(ctx context.Context, id string) (*models.Product, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProductsRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.ID = uuid.NewString()
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeProductsRepo) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[p.ID]
	if !ok || existing.UserID != p.UserID {
		return nil, common.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeProductsRepo) Delete(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProductsRepo) SetStock(ctx context.Context, id string, stock int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	p.Stock = stock
	f.setStock = append(f.setStock, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakeProductsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Products(db dbx.DBTX) products.Repository    { return m.p }
