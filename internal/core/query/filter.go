package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"marketplace/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/unicode/norm"
)

// Filter is the structured form of the product search parameters. Text and
// Location hold the normalized, still-unescaped input; escaping happens when
// the pattern is built so both the Mongo and in-memory evaluations treat
// every character literally.
type Filter struct {
	Category string
	Type     string
	Brand    string
	PriceMin *float64
	PriceMax *float64
	Text     string
	Location string
	Lang     string
}

// textFields are the fields the free-text pattern is OR-matched across.
var textFields = []string{"title", "description", "location", "category", "brand"}

// ParseFilter builds a Filter from request query parameters. A price bound
// that does not parse to a finite number is an error: letting it through as
// NaN would drop the constraint silently.
func ParseFilter(values url.Values) (*Filter, error) {
	f := &Filter{
		Category: strings.TrimSpace(values.Get("category")),
		Type:     strings.TrimSpace(values.Get("type")),
		Brand:    strings.TrimSpace(values.Get("brand")),
		Text:     Normalize(values.Get("q")),
		Location: Normalize(values.Get("loc")),
		Lang:     strings.TrimSpace(values.Get("lang")),
	}

	var err error
	if f.PriceMin, err = parseBound(values.Get("priceMin")); err != nil {
		return nil, err
	}
	if f.PriceMax, err = parseBound(values.Get("priceMax")); err != nil {
		return nil, err
	}
	return f, nil
}

// Normalize trims the input and folds it to NFKC so composed and decomposed
// renderings of the same text compare equal.
func Normalize(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

func parseBound(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid price bound %q", raw)
	}
	return &v, nil
}

// ToBson translates the filter into a MongoDB predicate. Pattern inputs are
// metacharacter-escaped and matched case-insensitively.
func (f *Filter) ToBson() bson.M {
	filter := bson.M{}

	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Brand != "" {
		filter["brand"] = f.Brand
	}

	if f.Text != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Text), Options: "i"}
		or := make([]bson.M, 0, len(textFields))
		for _, field := range textFields {
			or = append(or, bson.M{field: re})
		}
		filter["$or"] = or
	}

	if f.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
	}

	if f.PriceMin != nil || f.PriceMax != nil {
		price := bson.M{}
		if f.PriceMin != nil {
			price["$gte"] = *f.PriceMin
		}
		if f.PriceMax != nil {
			price["$lte"] = *f.PriceMax
		}
		filter["price"] = price
	}

	return filter
}

// Matches evaluates the filter against a product in memory. Candidate fields
// are folded to NFKC before matching: the write path canonicalizes text
// fields the same way, so this mirrors the store-side regex match and also
// covers records written before canonicalization.
func (f *Filter) Matches(p *model.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.PriceMin != nil && p.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}

	if f.Text != "" {
		re := compilePattern(f.Text)
		hit := false
		for _, v := range []string{p.Title, p.Description, p.Location, p.Category, p.Brand} {
			if re.MatchString(Normalize(v)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if f.Location != "" && !compilePattern(f.Location).MatchString(Normalize(p.Location)) {
		return false
	}

	return true
}

func compilePattern(text string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(text))
}
