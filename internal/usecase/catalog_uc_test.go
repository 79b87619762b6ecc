package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanswear/artisans/internal/domain"
	"github.com/artisanswear/artisans/internal/ingest"
)

// fakeRepo is an in-memory stand-in for the document collection with
// injectable failures.
type fakeRepo struct {
	mu      sync.Mutex
	seq     int
	docs    map[string]domain.Product
	order   []string
	failAll error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]domain.Product{}}
}

func (r *fakeRepo) ListAll(_ context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, r.failAll)
	}
	out := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out, nil
}

func (r *fakeRepo) Create(_ context.Context, p domain.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWrite, r.failAll)
	}
	r.seq++
	id := "id-" + strconv.Itoa(r.seq) // ids are never reused
	p.ID = id
	r.docs[id] = p
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeRepo) Update(_ context.Context, id string, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrite, r.failAll)
	}
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("%w: product %s: %w", domain.ErrWrite, id, domain.ErrNotFound)
	}
	p.ID = id
	r.docs[id] = p
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrite, r.failAll)
	}
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("%w: product %s: %w", domain.ErrWrite, id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func newTestUC(repo *fakeRepo) *CatalogUC {
	return &CatalogUC{
		Products: repo,
		Policy:   domain.DefaultSavePolicy(),
		Images:   ingest.NewProcessor(800, 65),
	}
}

func gownDraft() domain.ProductDraft {
	return domain.ProductDraft{Name: "Gown", Price: "199.99", Category: "Wedding", Images: []string{}}
}

func TestCatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := newTestUC(repo)

	// Create returns the store-assigned id and the list reflects it.
	id, err := uc.Create(ctx, gownDraft())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list := uc.List(domain.CategoryAll, "")
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "Gown", list[0].Name)
	assert.Equal(t, "199.99", list[0].Price)

	// Full-record overwrite, then the refreshed list shows the new price.
	updated := gownDraft()
	updated.Price = "179.99"
	require.NoError(t, uc.Update(ctx, id, updated))

	p, err := uc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "179.99", p.Price)

	// Delete, then the id is gone from the list.
	require.NoError(t, uc.Delete(ctx, id))
	assert.Empty(t, uc.List(domain.CategoryAll, ""))
	_, err = uc.Get(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateRejectsInvalidDraftBeforePersisting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := newTestUC(repo)

	for _, draft := range []domain.ProductDraft{
		{Name: "", Price: "10", Category: "Wedding"},
		{Name: "X", Price: "0", Category: "Wedding"},
		{Name: "X", Price: "-5", Category: "Wedding"},
	} {
		_, err := uc.Create(ctx, draft)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Empty(t, repo.order, "nothing may be persisted for an invalid draft")
}

func TestUpdateAndDeleteMissingID(t *testing.T) {
	ctx := context.Background()
	uc := newTestUC(newFakeRepo())
	require.NoError(t, uc.Refresh(ctx))

	err := uc.Update(ctx, "nope", gownDraft())
	assert.ErrorIs(t, err, domain.ErrWrite)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = uc.Delete(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrWrite)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFailedMutationLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := newTestUC(repo)

	id, err := uc.Create(ctx, gownDraft())
	require.NoError(t, err)
	before := uc.List(domain.CategoryAll, "")

	repo.failAll = fmt.Errorf("transport down")
	assert.Error(t, uc.Delete(ctx, id))
	d := gownDraft()
	d.Price = "5.00"
	assert.Error(t, uc.Update(ctx, id, d))

	assert.Equal(t, before, uc.List(domain.CategoryAll, ""), "no optimistic removal or update")
}

func TestRefreshFailureKeepsStaleList(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := newTestUC(repo)

	_, err := uc.Create(ctx, gownDraft())
	require.NoError(t, err)
	stale := uc.List(domain.CategoryAll, "")
	require.Len(t, stale, 1)

	repo.failAll = fmt.Errorf("transport down")
	err = uc.Refresh(ctx)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
	assert.Equal(t, stale, uc.List(domain.CategoryAll, ""))
	assert.True(t, uc.Loaded())
}

func TestCategoryCounts(t *testing.T) {
	ctx := context.Background()
	uc := newTestUC(newFakeRepo())

	for _, cat := range []string{"Wedding", "wedding", "Uniform", "More"} {
		d := gownDraft()
		d.Category = cat
		_, err := uc.Create(ctx, d)
		require.NoError(t, err)
	}

	counts := uc.CategoryCounts()
	assert.Equal(t, 2, counts[domain.CategoryWedding])
	assert.Equal(t, 1, counts[domain.CategoryUniform])
	assert.Equal(t, 1, counts[domain.CategoryMore])
}

func TestIngestImagesEnforcesCapBeforeIngestion(t *testing.T) {
	ctx := context.Background()
	uc := newTestUC(newFakeRepo())

	// Two already attached + two uploaded with cap 3: rejected whole, and
	// ingestion never runs (garbage readers would otherwise fail decode).
	files := []io.Reader{
		bytes.NewReader([]byte("junk")),
		bytes.NewReader([]byte("junk")),
	}
	uris, err := uc.IngestImages(ctx, 2, files)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrDecode)
	assert.Nil(t, uris)
}

func TestIngestImagesWithinCap(t *testing.T) {
	ctx := context.Background()
	uc := newTestUC(newFakeRepo())

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	uris, err := uc.IngestImages(ctx, 2, []io.Reader{bytes.NewReader(buf.Bytes())})
	require.NoError(t, err)
	require.Len(t, uris, 1)
}
