package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"marketplace/internal/cache"
	"marketplace/internal/core/model"
	"marketplace/internal/core/query"
	"marketplace/internal/core/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductService interface {
	CreateProduct(product *model.Product, sellerID primitive.ObjectID) (*model.Product, error)
	PatchProduct(id string, updates map[string]interface{}) (*model.Product, error)
	DeleteProduct(id string) (*model.Product, error)
	GetProduct(id, lang string) (*model.Product, error)
	SearchProducts(filter *query.Filter) ([]*model.Product, error)
	CategoryCounts() (map[string]int64, error)
}

const productListLimit = 200

type productService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewProductService(productRepo repository.ProductRepository, userRepo repository.UserRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

func (s *productService) CreateProduct(product *model.Product, sellerID primitive.ObjectID) (*model.Product, error) {
	canonicalizeProduct(product)
	if product.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if product.Type == "" {
		product.Type = model.ListingSell
	}
	if !model.ValidListingType(product.Type) {
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, model.ListingSell, model.ListingRent)
	}

	product.ID = primitive.NewObjectID()
	product.SellerID = sellerID
	product.Seller = nil
	if product.Images == nil {
		product.Images = []string{}
	}
	product.CreatedAt = time.Now()

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	s.invalidateCategories()
	return product, nil
}

// PatchProduct applies a partial update. The seller reference is stripped
// from the update set so ownership cannot be reassigned through this path.
func (s *productService) PatchProduct(id string, updates map[string]interface{}) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	delete(updates, "seller")
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "createdAt")
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields", ErrInvalidInput)
	}
	// The store is schemaless; a mistyped value would be applied as-is and
	// poison every later decode of the document. Validate before writing.
	if err := validatePatch(updates); err != nil {
		return nil, err
	}

	product, err := s.productRepo.UpdateFields(oid, updates)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	s.invalidateCategories()
	s.attachSellers([]*model.Product{product})
	return product, nil
}

func (s *productService) DeleteProduct(id string) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	product, err := s.productRepo.Delete(oid)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	s.invalidateCategories()
	return product, nil
}

func (s *productService) GetProduct(id, lang string) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	product, err := s.productRepo.FindByID(oid)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	product.Localize(lang)
	s.attachSellers([]*model.Product{product})
	return product, nil
}

func (s *productService) SearchProducts(filter *query.Filter) ([]*model.Product, error) {
	products, err := s.productRepo.Find(filter, productListLimit)
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		product.Localize(filter.Lang)
	}
	s.attachSellers(products)
	if products == nil {
		products = []*model.Product{}
	}
	return products, nil
}

func (s *productService) CategoryCounts() (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if counts, err := cache.CategoryCounts(ctx); err == nil {
		return counts, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("category cache read failed: %v", err)
	}

	counts, err := s.productRepo.CountByCategory()
	if err != nil {
		return nil, err
	}
	if err := cache.StoreCategoryCounts(ctx, counts); err != nil {
		log.Printf("category cache write failed: %v", err)
	}
	return counts, nil
}

// attachSellers denormalizes the seller reference into the name/email
// projection. A missing seller record leaves the field empty; it never fails
// the read.
func (s *productService) attachSellers(products []*model.Product) {
	resolved := make(map[primitive.ObjectID]*model.SellerRef)
	for _, product := range products {
		if product.SellerID.IsZero() {
			continue
		}
		ref, seen := resolved[product.SellerID]
		if !seen {
			user, err := s.userRepo.FindByID(product.SellerID)
			if err != nil {
				log.Printf("seller lookup failed for %s: %v", product.SellerID.Hex(), err)
			}
			if user != nil {
				ref = user.Ref()
			}
			resolved[product.SellerID] = ref
		}
		product.Seller = ref
	}
}

// canonicalizeProduct folds the searchable text fields to NFKC at write
// time, so the store-side regex match sees the same canonical form the query
// builder produces.
func canonicalizeProduct(product *model.Product) {
	product.Title = query.Normalize(product.Title)
	product.Description = query.Normalize(product.Description)
	product.Category = query.Normalize(product.Category)
	product.Brand = query.Normalize(product.Brand)
	product.Location = query.Normalize(product.Location)
}

// validatePatch checks every remaining patch field against the product
// schema and canonicalizes text values. Unknown fields are rejected rather
// than written into the document.
func validatePatch(updates map[string]interface{}) error {
	for key, value := range updates {
		switch key {
		case "title":
			s, ok := value.(string)
			if ok {
				s = query.Normalize(s)
			}
			if !ok || s == "" {
				return fmt.Errorf("%w: title must be a non-empty string", ErrInvalidInput)
			}
			updates[key] = s
		case "description", "category", "brand", "location":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrInvalidInput, key)
			}
			updates[key] = query.Normalize(s)
		case "price":
			n, ok := value.(float64)
			if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
				return fmt.Errorf("%w: price must be a number", ErrInvalidInput)
			}
		case "type":
			s, ok := value.(string)
			if !ok || !model.ValidListingType(s) {
				return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, model.ListingSell, model.ListingRent)
			}
		case "title_i18n", "description_i18n":
			entries, ok := value.(map[string]interface{})
			if !ok {
				return fmt.Errorf("%w: %s must be an object of strings", ErrInvalidInput, key)
			}
			for lang, v := range entries {
				if _, ok := v.(string); !ok {
					return fmt.Errorf("%w: %s entry %q must be a string", ErrInvalidInput, key, lang)
				}
			}
		case "images":
			items, ok := value.([]interface{})
			if !ok {
				return fmt.Errorf("%w: images must be a list of strings", ErrInvalidInput)
			}
			for _, v := range items {
				if _, ok := v.(string); !ok {
					return fmt.Errorf("%w: images must be a list of strings", ErrInvalidInput)
				}
			}
		default:
			return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, key)
		}
	}
	return nil
}

func (s *productService) invalidateCategories() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := cache.InvalidateCategoryCounts(ctx); err != nil {
		log.Printf("category cache invalidation failed: %v", err)
	}
}
