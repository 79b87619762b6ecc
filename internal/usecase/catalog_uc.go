package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/artisanswear/artisans/internal/domain"
	"github.com/artisanswear/artisans/internal/ingest"
)

// CatalogUC holds the authoritative local product list and routes every
// mutation through the repository. The list is refreshed wholesale after a
// confirmed successful mutation; on a failed refresh the previous list stays
// available (stale-but-available).
type CatalogUC struct {
	Products domain.ProductRepo
	Policy   domain.SavePolicy
	Images   *ingest.Processor

	mu    sync.RWMutex
	cache []domain.Product
}

// Refresh replaces the cached list with the repository contents. The cache
// is left untouched when the fetch fails.
func (uc *CatalogUC) Refresh(ctx context.Context) error {
	list, err := uc.Products.ListAll(ctx)
	if err != nil {
		return err
	}
	uc.mu.Lock()
	uc.cache = list
	uc.mu.Unlock()
	return nil
}

// Loaded reports whether a full list has ever been fetched.
func (uc *CatalogUC) Loaded() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.cache != nil
}

// List derives the displayed subset of the cached list for the given
// category and search term.
func (uc *CatalogUC) List(category, term string) []domain.Product {
	uc.mu.RLock()
	snapshot := uc.cache
	uc.mu.RUnlock()
	return domain.Filter(snapshot, category, term)
}

// Get looks one product up in the cached list.
func (uc *CatalogUC) Get(id string) (*domain.Product, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for i := range uc.cache {
		if uc.cache[i].ID == id {
			p := uc.cache[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

// CategoryCounts tallies the cached list per category.
func (uc *CatalogUC) CategoryCounts() map[domain.Category]int {
	uc.mu.RLock()
	snapshot := uc.cache
	uc.mu.RUnlock()
	return domain.CountByCategory(snapshot)
}

// Create validates and persists a new product, then refreshes the list. The
// mutation always completes before the refresh starts.
func (uc *CatalogUC) Create(ctx context.Context, d domain.ProductDraft) (string, error) {
	p, err := d.Commit(uc.Policy)
	if err != nil {
		return "", err
	}
	id, err := uc.Products.Create(ctx, p)
	if err != nil {
		return "", err
	}
	if err := uc.Refresh(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// Update overwrites the identified product with the committed draft (full
// record, not a partial patch), then refreshes the list.
func (uc *CatalogUC) Update(ctx context.Context, id string, d domain.ProductDraft) error {
	p, err := d.Commit(uc.Policy)
	if err != nil {
		return err
	}
	if err := uc.Products.Update(ctx, id, p); err != nil {
		return err
	}
	return uc.Refresh(ctx)
}

// Delete removes the identified product, then refreshes the list. The local
// list is never touched before the repository confirms the delete.
func (uc *CatalogUC) Delete(ctx context.Context, id string) error {
	if err := uc.Products.Delete(ctx, id); err != nil {
		return err
	}
	return uc.Refresh(ctx)
}

// IngestImages runs one upload batch through the image pipeline. The image
// cap is enforced here, before ingestion: a batch that would push the
// product over the limit is rejected whole, no partial acceptance.
func (uc *CatalogUC) IngestImages(ctx context.Context, existing int, files []io.Reader) ([]string, error) {
	if uc.Policy.MaxImages > 0 && existing+len(files) > uc.Policy.MaxImages {
		return nil, fmt.Errorf("%w: at most %d images per product (%d already attached, %d uploaded)",
			domain.ErrValidation, uc.Policy.MaxImages, existing, len(files))
	}
	return uc.Images.Process(ctx, files)
}
