package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the fixed set of catalog categories. Comparisons are always
// case-insensitive; the canonical spelling is what gets persisted.
type Category string

const (
	CategoryWedding Category = "Wedding"
	CategoryUniform Category = "Uniform"
	CategoryMore    Category = "More"
)

// CategoryAll is the pseudo-category that disables the category filter axis.
const CategoryAll = "all"

func Categories() []Category {
	return []Category{CategoryWedding, CategoryUniform, CategoryMore}
}

// ParseCategory normalizes a free-form category string to its canonical form.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// Product is one catalog item. ID is assigned by the repository on creation
// and never reused. Price is kept as the string the user typed to preserve
// formatting; it is validated numerically before any save.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

// ProductDraft is the uncommitted add/edit form. It only becomes a Product
// through Commit, which is where all validation happens.
type ProductDraft struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

// SavePolicy carries the storage-backend limits. The defaults come from the
// document-size ceiling of the backing store and are configurable via env.
type SavePolicy struct {
	MaxImages       int
	MaxPayloadBytes int
}

func DefaultSavePolicy() SavePolicy {
	return SavePolicy{MaxImages: 3, MaxPayloadBytes: 800_000}
}

// Validate checks the draft against the save rules: name present, price a
// positive number, known category, image payload under the ceiling.
func (d ProductDraft) Validate(policy SavePolicy) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil {
		return fmt.Errorf("%w: price %q is not a number", ErrValidation, d.Price)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	}
	if _, err := ParseCategory(d.Category); err != nil {
		return err
	}
	if policy.MaxImages > 0 && len(d.Images) > policy.MaxImages {
		return fmt.Errorf("%w: at most %d images per product", ErrValidation, policy.MaxImages)
	}
	if policy.MaxPayloadBytes > 0 {
		total := 0
		for _, img := range d.Images {
			total += len(img)
		}
		if total > policy.MaxPayloadBytes {
			return fmt.Errorf("%w: image payload %d bytes exceeds limit of %d", ErrValidation, total, policy.MaxPayloadBytes)
		}
	}
	return nil
}

// Commit validates the draft and produces a Product with the category in
// canonical spelling. The ID stays empty; only the repository assigns ids.
func (d ProductDraft) Commit(policy SavePolicy) (Product, error) {
	if err := d.Validate(policy); err != nil {
		return Product{}, err
	}
	cat, _ := ParseCategory(d.Category)
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		Name:        strings.TrimSpace(d.Name),
		Price:       strings.TrimSpace(d.Price),
		Description: d.Description,
		Category:    string(cat),
		Images:      images,
	}, nil
}
