package repository

import (
	"encoding/json"
	"fmt"
	"sync"

	"marketplace/internal/core/model"
	"marketplace/internal/core/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type inMemoryProductRepository struct {
	products map[primitive.ObjectID]*model.Product
	mutex    sync.RWMutex
}

func NewInMemoryProductRepository() ProductRepository {
	return &inMemoryProductRepository{
		products: make(map[primitive.ObjectID]*model.Product),
	}
}

func (r *inMemoryProductRepository) Create(product *model.Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product with ID %s already exists", product.ID.Hex())
	}

	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *inMemoryProductRepository) FindByID(id primitive.ObjectID) (*model.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if product, exists := r.products[id]; exists {
		copied := *product
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryProductRepository) Find(filter *query.Filter, limit int64) ([]*model.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var products []*model.Product
	for _, product := range r.products {
		if int64(len(products)) >= limit {
			break
		}
		if filter.Matches(product) {
			copied := *product
			products = append(products, &copied)
		}
	}
	return products, nil
}

// UpdateFields merges the partial update into the stored record through a
// JSON round trip, mirroring what a $set does on the document store.
func (r *inMemoryProductRepository) UpdateFields(id primitive.ObjectID, fields map[string]interface{}) (*model.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	product, exists := r.products[id]
	if !exists {
		return nil, nil
	}

	raw, err := json.Marshal(product)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var updated model.Product
	if err := json.Unmarshal(merged, &updated); err != nil {
		return nil, err
	}
	// Identity and ownership survive the round trip unchanged, even if the
	// caller smuggled them into the field map.
	updated.ID = product.ID
	updated.SellerID = product.SellerID
	updated.CreatedAt = product.CreatedAt

	r.products[id] = &updated
	copied := updated
	return &copied, nil
}

func (r *inMemoryProductRepository) Delete(id primitive.ObjectID) (*model.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	product, exists := r.products[id]
	if !exists {
		return nil, nil
	}
	delete(r.products, id)
	copied := *product
	return &copied, nil
}

func (r *inMemoryProductRepository) CountByCategory() (map[string]int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	counts := make(map[string]int64)
	for _, product := range r.products {
		if product.Category != "" {
			counts[product.Category]++
		}
	}
	return counts, nil
}
