package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/api/middleware"
	"marketplace/internal/api/respond"
	"marketplace/internal/core/model"
	"marketplace/internal/core/query"
	"marketplace/internal/core/service"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

type createProductRequest struct {
	Title           string            `json:"title"`
	TitleI18n       map[string]string `json:"title_i18n"`
	Description     string            `json:"description"`
	DescriptionI18n map[string]string `json:"description_i18n"`
	Price           *float64          `json:"price"`
	Category        string            `json:"category"`
	Type            string            `json:"type"`
	Brand           string            `json:"brand"`
	Location        string            `json:"location"`
	Images          []string          `json:"images"`
}

// List handles GET /api/products with the optional filter parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := query.ParseFilter(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.productService.SearchProducts(filter)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	respond.JSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.PathValue("id"), r.URL.Query().Get("lang"))
	if err != nil {
		writeProductError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

// Create handles POST /api/products. The seller is always the authenticated
// admin; any seller in the body is ignored.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price == nil {
		respond.Error(w, http.StatusBadRequest, "price is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Missing token")
		return
	}

	product := &model.Product{
		Title:           req.Title,
		TitleI18n:       req.TitleI18n,
		Description:     req.Description,
		DescriptionI18n: req.DescriptionI18n,
		Price:           *req.Price,
		Category:        req.Category,
		Type:            req.Type,
		Brand:           req.Brand,
		Location:        req.Location,
		Images:          req.Images,
	}

	created, err := h.productService.CreateProduct(product, user.ID)
	if err != nil {
		writeProductError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// Patch handles PATCH /api/products/{id} with a partial update body.
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productService.PatchProduct(r.PathValue("id"), updates)
	if err != nil {
		writeProductError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.productService.DeleteProduct(r.PathValue("id")); err != nil {
		writeProductError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Categories handles GET /api/products/categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.productService.CategoryCounts()
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond.JSON(w, http.StatusOK, counts)
}

func writeProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		respond.Error(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, service.ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "Server error")
	}
}
