package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
)

func (a *API) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := a.products.List(r.Context(), userID(r))
	if err != nil {
		a.mapError(w, r, err)
		return
	}

	data := toProductDTOs(ps)
	writeJSON(w, http.StatusOK, ProductListResponse{Success: true, Count: len(data), Data: data})
}

func (a *API) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := services.ProductInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Image != nil {
		in.Image = *req.Image
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Price != nil {
		in.Price = float64(*req.Price)
	}
	if req.Stock != nil {
		stock, ok := req.Stock.int64()
		if !ok {
			writeError(w, http.StatusBadRequest, "Stock must be a whole number")
			return
		}
		in.Stock = stock
	}

	p, err := a.products.Create(r.Context(), userID(r), in)
	if err != nil {
		a.mapProductError(w, r, err)
		return
	}

	dto := toProductDTO(p)
	writeJSON(w, http.StatusCreated, ProductResponse{Success: true, Data: &dto})
}

func (a *API) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := models.ProductPatch{Name: req.Name, Image: req.Image, Category: req.Category}
	if req.Price != nil {
		v := float64(*req.Price)
		patch.Price = &v
	}
	if req.Stock != nil {
		stock, ok := req.Stock.int64()
		if !ok {
			writeError(w, http.StatusBadRequest, "Stock must be a whole number")
			return
		}
		patch.Stock = &stock
	}

	p, err := a.products.Update(r.Context(), userID(r), chi.URLParam(r, "productID"), patch)
	if err != nil {
		a.mapProductError(w, r, err)
		return
	}

	dto := toProductDTO(p)
	writeJSON(w, http.StatusOK, ProductResponse{Success: true, Data: &dto})
}

func (a *API) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.products.Delete(r.Context(), userID(r), chi.URLParam(r, "productID")); err != nil {
		a.mapProductError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{Success: true, Message: "Product deleted"})
}

// RecordSale applies a bulk sale from the price calculator.
func (a *API) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]models.SaleLine, 0, len(req.Items))
	for _, it := range req.Items {
		q, ok := it.Quantity.int64()
		if !ok {
			writeError(w, http.StatusBadRequest, "Quantity must be a whole number")
			return
		}
		lines = append(lines, models.SaleLine{ProductID: it.ProductID, Quantity: q})
	}

	sale, err := a.products.RecordSale(r.Context(), userID(r), lines)
	if err != nil {
		a.mapProductError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SaleResponse{Success: true, Total: sale.Total, Data: toProductDTOs(sale.Products)})
}

func (a *API) CreateImageUpload(w http.ResponseWriter, r *http.Request) {
	var req ImageUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	up, err := a.images.UploadURL(r.Context(), userID(r), req.ContentType)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImageUploadResponse{Key: up.Key, UploadURL: up.URL, ExpiresAt: up.ExpiresAt})
}

func (a *API) GetImageURL(w http.ResponseWriter, r *http.Request) {
	url, err := a.images.DownloadURL(r.Context(), userID(r), r.URL.Query().Get("key"))
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImageURLResponse{URL: url})
}
