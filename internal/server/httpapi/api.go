// Package httpapi exposes the JSON API consumed by the web UI: account
// routes under /api/auth and the caller's catalog under /api/products.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*services.AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, name, email string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type ProductService interface {
	List(ctx context.Context, userID string) ([]*models.Product, error)
	Create(ctx context.Context, userID string, in services.ProductInput) (*models.Product, error)
	Update(ctx context.Context, userID, productID string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, userID, productID string) error
	RecordSale(ctx context.Context, userID string, lines []models.SaleLine) (*models.Sale, error)
}

type ImageService interface {
	UploadURL(ctx context.Context, userID, contentType string) (*models.ImageUpload, error)
	DownloadURL(ctx context.Context, userID, key string) (string, error)
}

// API holds the handlers and their collaborators.
type API struct {
	users     UserService
	products  ProductService
	images    ImageService
	verifier  auth.Verifier
	transport *auth.Transport
	cors      CORSConfig
	log       logging.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger used for request and failure logging.
func WithLogger(l logging.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithCORS sets the cross-origin allow-list.
func WithCORS(c CORSConfig) Option {
	return func(a *API) {
		a.cors = c
	}
}

// WithImages enables the image upload routes.
func WithImages(s ImageService) Option {
	return func(a *API) {
		a.images = s
	}
}

func New(users UserService, products ProductService, verifier auth.Verifier, transport *auth.Transport, opts ...Option) *API {
	a := &API{
		users:     users,
		products:  products,
		verifier:  verifier,
		transport: transport,
		log:       logging.Nop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router builds the complete HTTP handler. CORS runs first so that preflight
// requests and error responses carry the allow headers too.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(a.corsHandler())
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Backend is running"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", a.Register)
		r.Post("/login", a.Login)
		r.Post("/logout", a.Logout)
		r.With(a.RequireAuth).Get("/me", a.Me)
		r.With(a.RequireAuth).Put("/update", a.UpdateProfile)
		r.With(a.RequireAuth).Put("/change-password", a.ChangePassword)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(a.RequireAuth)
		r.Get("/", a.ListProducts)
		r.Post("/", a.CreateProduct)
		r.Post("/sales", a.RecordSale)
		if a.images != nil {
			r.Post("/images", a.CreateImageUpload)
			r.Get("/images", a.GetImageURL)
		}
		r.Put("/{productID}", a.UpdateProduct)
		r.Delete("/{productID}", a.DeleteProduct)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
