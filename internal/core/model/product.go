package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ListingSell = "sell"
	ListingRent = "rent"
)

type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title"`
	TitleI18n       map[string]string  `json:"title_i18n,omitempty" bson:"title_i18n,omitempty"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	DescriptionI18n map[string]string  `json:"description_i18n,omitempty" bson:"description_i18n,omitempty"`
	Price           float64            `json:"price" bson:"price"`
	Category        string             `json:"category,omitempty" bson:"category,omitempty"`
	Type            string             `json:"type" bson:"type"`
	Brand           string             `json:"brand,omitempty" bson:"brand,omitempty"`
	Location        string             `json:"location,omitempty" bson:"location,omitempty"`
	Images          []string           `json:"images" bson:"images"`
	SellerID        primitive.ObjectID `json:"-" bson:"seller,omitempty"`
	Seller          *SellerRef         `json:"seller,omitempty" bson:"-"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

func NewProduct(title string, price float64, sellerID primitive.ObjectID) *Product {
	return &Product{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Price:     price,
		Type:      ListingSell,
		Images:    []string{},
		SellerID:  sellerID,
		CreatedAt: time.Now(),
	}
}

func ValidListingType(t string) bool {
	return t == ListingSell || t == ListingRent
}

// Localize overwrites the default title/description with the per-language
// variant when one exists. Read-time projection only; callers must apply it
// to a copy, never to the stored record.
func (p *Product) Localize(lang string) {
	if lang == "" {
		return
	}
	if v, ok := p.TitleI18n[lang]; ok && v != "" {
		p.Title = v
	}
	if v, ok := p.DescriptionI18n[lang]; ok && v != "" {
		p.Description = v
	}
}
