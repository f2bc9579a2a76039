package service

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"marketplace/internal/core/model"
	"marketplace/internal/core/query"
	"marketplace/internal/core/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProductFixture(t *testing.T) (ProductService, *model.User, *model.User) {
	t.Helper()

	userRepo := repository.NewInMemoryUserRepository()
	alice := model.NewUser("alice@example.com", "hash", "Alice")
	bob := model.NewUser("bob@example.com", "hash", "Bob")
	for _, u := range []*model.User{alice, bob} {
		if err := userRepo.Create(u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	return NewProductService(repository.NewInMemoryProductRepository(), userRepo), alice, bob
}

func TestCreateProduct(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	created, err := svc.CreateProduct(&model.Product{Title: "iPhone 12", Price: 350, Category: "electronics"}, alice.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Type != model.ListingSell {
		t.Errorf("listing type must default to %q, got %q", model.ListingSell, created.Type)
	}
	if created.SellerID != alice.ID {
		t.Errorf("seller must be the creating identity")
	}
	if created.Images == nil {
		t.Errorf("images must serialize as an empty list, not null")
	}

	if _, err := svc.CreateProduct(&model.Product{Price: 10}, alice.ID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing title must fail with ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateProduct(&model.Product{Title: "X", Price: 10, Type: "lease"}, alice.ID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown listing type must fail with ErrInvalidInput, got %v", err)
	}
}

func TestPatchProductStripsSeller(t *testing.T) {
	svc, alice, bob := newProductFixture(t)

	created, err := svc.CreateProduct(&model.Product{Title: "Bike", Price: 500}, alice.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.PatchProduct(created.ID.Hex(), map[string]interface{}{
		"price":  450.0,
		"seller": bob.ID.Hex(),
	})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if updated.Price != 450 {
		t.Errorf("price not updated, got %v", updated.Price)
	}
	if updated.SellerID != alice.ID {
		t.Errorf("seller must be immutable via patch, got %s", updated.SellerID.Hex())
	}
}

func TestPatchProductErrors(t *testing.T) {
	svc, _, _ := newProductFixture(t)

	if _, err := svc.PatchProduct("bogus", map[string]interface{}{"price": 1.0}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("malformed id must fail with ErrInvalidID, got %v", err)
	}
	if _, err := svc.PatchProduct(primitive.NewObjectID().Hex(), map[string]interface{}{"price": 1.0}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id must fail with ErrNotFound, got %v", err)
	}
	if _, err := svc.PatchProduct(primitive.NewObjectID().Hex(), map[string]interface{}{"seller": "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("seller-only patch must leave no updatable fields, got %v", err)
	}
}

// The store is schemaless, so a mistyped patch value would be written as-is
// and break every later decode of the document. Such patches must be
// rejected before anything reaches the repository.
func TestPatchProductValidatesValues(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	created, err := svc.CreateProduct(&model.Product{Title: "Bike", Price: 500}, alice.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tests := []struct {
		name    string
		updates map[string]interface{}
	}{
		{name: "price as string", updates: map[string]interface{}{"price": "abc"}},
		{name: "price NaN", updates: map[string]interface{}{"price": math.NaN()}},
		{name: "type as number", updates: map[string]interface{}{"type": 123.0}},
		{name: "unknown listing type", updates: map[string]interface{}{"type": "lease"}},
		{name: "empty title", updates: map[string]interface{}{"title": ""}},
		{name: "title as number", updates: map[string]interface{}{"title": 7.0}},
		{name: "brand as bool", updates: map[string]interface{}{"brand": true}},
		{name: "images as scalar", updates: map[string]interface{}{"images": "x"}},
		{name: "images with non-string", updates: map[string]interface{}{"images": []interface{}{1.0}}},
		{name: "i18n as string", updates: map[string]interface{}{"title_i18n": "x"}},
		{name: "i18n entry non-string", updates: map[string]interface{}{"title_i18n": map[string]interface{}{"ka": 1.0}}},
		{name: "unknown field", updates: map[string]interface{}{"bogus": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.PatchProduct(created.ID.Hex(), tt.updates); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("must fail with ErrInvalidInput, got %v", err)
			}
		})
	}

	// Nothing was written by any rejected patch
	stored, err := svc.GetProduct(created.ID.Hex(), "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Title != "Bike" || stored.Price != 500 {
		t.Errorf("rejected patches must leave the record untouched, got %+v", stored)
	}
}

// Searchable text is canonicalized to NFKC on every write, so the store-side
// regex sees the same form the query builder produces.
func TestWritesCanonicalizeText(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	created, err := svc.CreateProduct(&model.Product{
		Title: "cafe\u0301 table", // decomposed e + combining acute
		Price: 80,
	}, alice.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Title != "café table" {
		t.Errorf("stored title must be the composed form, got %q", created.Title)
	}

	filter, err := query.ParseFilter(url.Values{"q": {"café"}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	results, err := svc.SearchProducts(filter)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("composed query must match the canonicalized record, got %d results", len(results))
	}

	patched, err := svc.PatchProduct(created.ID.Hex(), map[string]interface{}{
		"description": "tre\u0300s bon", // decomposed e + combining grave
	})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if patched.Description != "très bon" {
		t.Errorf("patched description must be canonicalized, got %q", patched.Description)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	created, err := svc.CreateProduct(&model.Product{Title: "Bike", Price: 500}, alice.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.DeleteProduct(created.ID.Hex()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.DeleteProduct(created.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete must fail with ErrNotFound, got %v", err)
	}
}

func TestSearchProducts(t *testing.T) {
	svc, alice, bob := newProductFixture(t)

	if _, err := svc.CreateProduct(&model.Product{Title: "iPhone 12", Price: 350, Category: "electronics"}, alice.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.CreateProduct(&model.Product{Title: "Mountain Bike", Price: 500, Category: "sports"}, bob.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}

	max := 400.0
	results, err := svc.SearchProducts(&query.Filter{PriceMax: &max})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "iPhone 12" {
		t.Fatalf("priceMax=400 must return exactly the iPhone, got %d results", len(results))
	}

	// Seller denormalized to the partial projection
	seller := results[0].Seller
	if seller == nil || seller.Name != "Alice" || seller.Email != "alice@example.com" {
		t.Errorf("seller projection missing or wrong: %+v", seller)
	}
}

func TestSearchLocalizesResults(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	if _, err := svc.CreateProduct(&model.Product{
		Title:     "Phone",
		TitleI18n: map[string]string{"ka": "ტელეფონი"},
		Price:     100,
	}, alice.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.CreateProduct(&model.Product{Title: "Bike", Price: 200}, alice.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}

	results, err := svc.SearchProducts(&query.Filter{Lang: "ka"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	titles := make(map[string]bool)
	for _, p := range results {
		titles[p.Title] = true
	}
	if !titles["ტელეფონი"] {
		t.Error("record with a ka entry must return the localized title")
	}
	if !titles["Bike"] {
		t.Error("record without a ka entry must keep the default title")
	}
}

func TestGetProductLocalization(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	created, err := svc.CreateProduct(&model.Product{
		Title:           "Phone",
		TitleI18n:       map[string]string{"ka": "ტელეფონი"},
		Description:     "Good condition",
		DescriptionI18n: map[string]string{"ka": "კარგი მდგომარეობა"},
		Price:           100,
	}, alice.ID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	localized, err := svc.GetProduct(created.ID.Hex(), "ka")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if localized.Title != "ტელეფონი" || localized.Description != "კარგი მდგომარეობა" {
		t.Errorf("ka projection not applied: %+v", localized)
	}

	// Projection is read-time only: the default read is untouched
	plain, err := svc.GetProduct(created.ID.Hex(), "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if plain.Title != "Phone" {
		t.Errorf("stored title must stay the default, got %q", plain.Title)
	}

	// Unknown language leaves defaults unchanged
	fallback, err := svc.GetProduct(created.ID.Hex(), "fr")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fallback.Title != "Phone" {
		t.Errorf("missing language entry must fall back to default, got %q", fallback.Title)
	}
}

func TestCategoryCounts(t *testing.T) {
	svc, alice, _ := newProductFixture(t)

	seeds := []*model.Product{
		{Title: "A", Price: 1, Category: "electronics"},
		{Title: "B", Price: 2, Category: "electronics"},
		{Title: "C", Price: 3, Category: "sports"},
		{Title: "D", Price: 4},
	}
	for _, p := range seeds {
		if _, err := svc.CreateProduct(p, alice.ID); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	counts, err := svc.CategoryCounts()
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if counts["electronics"] != 2 || counts["sports"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if _, ok := counts[""]; ok {
		t.Error("uncategorized records must not appear in the aggregation")
	}
}
