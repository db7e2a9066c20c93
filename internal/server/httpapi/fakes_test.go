package httpapi_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
)

var testSecret = []byte("http-test-secret")

type fakeUsers struct {
	mu        sync.Mutex
	authn     *auth.Authenticator
	byID      map[string]*models.User
	passwords map[string]string
}

func newFakeUsers(a *auth.Authenticator) *fakeUsers {
	return &fakeUsers{authn: a, byID: map[string]*models.User{}, passwords: map[string]string{}}
}

func (f *fakeUsers) issue(u *models.User) (*services.AuthResult, error) {
	cred, err := f.authn.Issue(auth.Identity{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	cp := *u
	return &services.AuthResult{User: &cp, Credential: cred}, nil
}

func (f *fakeUsers) Register(ctx context.Context, name, email, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == "" || email == "" || password == "" {
		return nil, common.Invalid("All fields required")
	}
	for _, u := range f.byID {
		if u.Email == email {
			return nil, fmt.Errorf("email already registered: %w", common.ErrAlreadyExists)
		}
	}
	u := &models.User{ID: uuid.NewString(), Name: name, Email: email, CreatedAt: time.Now()}
	f.byID[u.ID] = u
	f.passwords[u.ID] = password
	return f.issue(u)
}

func (f *fakeUsers) Login(ctx context.Context, identifier, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.byID {
		if (u.Email == identifier || u.Name == identifier) && f.passwords[id] == password {
			return f.issue(u)
		}
	}
	return nil, common.ErrUnauthorized
}

func (f *fakeUsers) Profile(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID, name, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ChangePassword(ctx context.Context, userID, current, next string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.passwords[userID] != current {
		return common.Invalid("Current password is incorrect")
	}
	f.passwords[userID] = next
	return nil
}

// fakeProducts records the last call and answers with err when set.
type fakeProducts struct {
	mu       sync.Mutex
	err      error
	items    []*models.Product
	gotUser  string
	gotID    string
	gotInput services.ProductInput
	gotPatch models.ProductPatch
	gotLines []models.SaleLine
}

func (f *fakeProducts) List(ctx context.Context, userID string) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser = userID
	return f.items, f.err
}

func (f *fakeProducts) Create(ctx context.Context, userID string, in services.ProductInput) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser, f.gotInput = userID, in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: "p-new", UserID: userID, Name: in.Name, Price: in.Price, Image: in.Image, Stock: in.Stock, Category: in.Category}, nil
}

func (f *fakeProducts) Update(ctx context.Context, userID, productID string, patch models.ProductPatch) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser, f.gotID, f.gotPatch = userID, productID, patch
	if f.err != nil {
		return nil, f.err
	}
	p := &models.Product{ID: productID, UserID: userID, Name: "Tea", Price: 1, Stock: 1}
	patch.Apply(p)
	return p, nil
}

func (f *fakeProducts) Delete(ctx context.Context, userID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser, f.gotID = userID, productID
	return f.err
}

func (f *fakeProducts) RecordSale(ctx context.Context, userID string, lines []models.SaleLine) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser, f.gotLines = userID, lines
	if f.err != nil {
		return nil, f.err
	}
	return &models.Sale{Products: f.items, Total: 12.5}, nil
}

func (f *fakeProducts) user() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotUser
}

func (f *fakeProducts) set(items []*models.Product, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.err = items, err
}

type fakeImages struct{}

func (fakeImages) UploadURL(ctx context.Context, userID, contentType string) (*models.ImageUpload, error) {
	return &models.ImageUpload{Key: "products/" + userID + "/k", URL: "https://s3.local/put", ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (fakeImages) DownloadURL(ctx context.Context, userID, key string) (string, error) {
	if key != "products/"+userID+"/k" {
		return "", common.ErrForbidden
	}
	return "https://s3.local/get", nil
}

type logEntry struct {
	level string
	msg   string
}

// recordingLogger keeps every entry for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, _ ...any) { l.add("DEBUG", msg) }
func (l *recordingLogger) Info(_ context.Context, msg string, _ ...any)  { l.add("INFO", msg) }
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any)  { l.add("WARN", msg) }
func (l *recordingLogger) Error(_ context.Context, msg string, _ ...any) { l.add("ERROR", msg) }
func (l *recordingLogger) With(...any) logging.Logger                    { return l }

func (l *recordingLogger) levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level != "DEBUG" {
			out = append(out, e.level)
		}
	}
	return out
}

func (l *recordingLogger) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

type testEnv struct {
	srv      *httptest.Server
	authn    *auth.Authenticator
	users    *fakeUsers
	products *fakeProducts
	log      *recordingLogger
}

func setupServer(t *testing.T, tc auth.TransportConfig) *testEnv {
	t.Helper()
	a, err := auth.New(testSecret)
	require.NoError(t, err)
	tr, err := auth.NewTransport(tc)
	require.NoError(t, err)

	env := &testEnv{
		authn:    a,
		users:    newFakeUsers(a),
		products: &fakeProducts{},
		log:      &recordingLogger{},
	}
	api := httpapi.New(env.users, env.products, a, tr,
		httpapi.WithLogger(env.log),
		httpapi.WithImages(fakeImages{}),
		httpapi.WithCORS(httpapi.CORSConfig{
			Origins:      []string{"http://localhost:5173"},
			HostSuffixes: []string{".vercel.app"},
		}),
	)
	env.srv = httptest.NewServer(api.Router())
	t.Cleanup(env.srv.Close)
	return env
}

