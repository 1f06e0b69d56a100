package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProductRepo struct {
	bySlug map[string]*models.Product
	nextID uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{bySlug: map[string]*models.Product{}, nextID: 1}
}

func (r *fakeProductRepo) Create(product *models.Product) error {
	product.ID = r.nextID
	r.nextID++
	cp := *product
	r.bySlug[product.Slug] = &cp
	return nil
}

func (r *fakeProductRepo) GetBySlug(slug string) (*models.Product, error) {
	if p, ok := r.bySlug[slug]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) GetByFulfillmentID(fulfillmentID string) (*models.Product, error) {
	for _, p := range r.bySlug {
		if p.FulfillmentProductID == fulfillmentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(product *models.Product) error {
	cp := *product
	r.bySlug[product.Slug] = &cp
	return nil
}

func (r *fakeProductRepo) SetPublished(slug string, published bool) error {
	p, ok := r.bySlug[slug]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Published = published
	return nil
}

func (r *fakeProductRepo) List(offset, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.bySlug {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) ListPublished(offset, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.bySlug {
		if p.Published {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SlugExists(slug string) (bool, error) {
	_, ok := r.bySlug[slug]
	return ok, nil
}

func (r *fakeProductRepo) Count() (int64, error) {
	return int64(len(r.bySlug)), nil
}

type fakeFetcher struct {
	product *fulfillment.StoreProduct
	err     error
}

func (f *fakeFetcher) GetStoreProduct(ctx context.Context, productID string) (*fulfillment.StoreProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

type staticThemes map[string]bool

func (t staticThemes) ThemeExists(name string) bool { return t[name] }

func newTestCatalog() (*Service, *fakeProductRepo) {
	repo := newFakeProductRepo()
	fetcher := &fakeFetcher{product: &fulfillment.StoreProduct{
		ID:           "42",
		Name:         "Cool Shirt",
		ThumbnailURL: "https://img.example/42.png",
		VariantID:    9001,
		RetailPrice:  "19.99",
		Currency:     "EUR",
	}}
	svc := NewService(repo, fetcher, staticThemes{"default": true})
	return svc, repo
}

func TestImport_CreatesUnpublishedProduct(t *testing.T) {
	svc, repo := newTestCatalog()

	product, err := svc.Import(context.Background(), "42", 1999, "eur", "")
	require.NoError(t, err)
	assert.Equal(t, "cool-shirt", product.Slug)
	assert.Equal(t, "Cool Shirt", product.Title)
	assert.Equal(t, "42", product.FulfillmentProductID)
	assert.Equal(t, int64(9001), product.FulfillmentVariantID)
	assert.Equal(t, int64(1999), product.PriceCents)
	assert.Equal(t, "EUR", product.Currency)
	assert.Equal(t, "default", product.Theme)
	assert.False(t, product.Published)
	assert.Equal(t, "https://img.example/42.png", product.Metadata()["og_image"])

	stored, err := repo.GetBySlug("cool-shirt")
	require.NoError(t, err)
	assert.False(t, stored.Published)
}

func TestImport_SlugCollisionGetsSuffix(t *testing.T) {
	svc, _ := newTestCatalog()

	first, err := svc.Import(context.Background(), "42", 1999, "EUR", "default")
	require.NoError(t, err)
	second, err := svc.Import(context.Background(), "42", 1999, "EUR", "default")
	require.NoError(t, err)
	third, err := svc.Import(context.Background(), "42", 1999, "EUR", "default")
	require.NoError(t, err)

	assert.Equal(t, "cool-shirt", first.Slug)
	assert.Equal(t, "cool-shirt-2", second.Slug)
	assert.Equal(t, "cool-shirt-3", third.Slug)
}

func TestImport_RequiresProductID(t *testing.T) {
	svc, _ := newTestCatalog()

	_, err := svc.Import(context.Background(), "  ", 1999, "EUR", "default")
	assert.Error(t, err)
}

func TestPublish_SetsFlag(t *testing.T) {
	svc, repo := newTestCatalog()
	_, err := svc.Import(context.Background(), "42", 1999, "EUR", "default")
	require.NoError(t, err)

	product, err := svc.Publish("cool-shirt")
	require.NoError(t, err)
	assert.True(t, product.Published)

	stored, err := repo.GetBySlug("cool-shirt")
	require.NoError(t, err)
	assert.True(t, stored.Published)
}

func TestPublish_GuardRejectsZeroPrice(t *testing.T) {
	svc, _ := newTestCatalog()
	_, err := svc.Import(context.Background(), "42", 0, "EUR", "default")
	require.NoError(t, err)

	_, err = svc.Publish("cool-shirt")
	assert.ErrorIs(t, err, ErrNotPublishable)
}

func TestPublish_GuardRejectsMissingTheme(t *testing.T) {
	svc, repo := newTestCatalog()
	_, err := svc.Import(context.Background(), "42", 1999, "EUR", "default")
	require.NoError(t, err)
	repo.bySlug["cool-shirt"].Theme = "nonexistent"

	_, err = svc.Publish("cool-shirt")
	assert.ErrorIs(t, err, ErrNotPublishable)
}

func TestPublish_UnknownSlug(t *testing.T) {
	svc, _ := newTestCatalog()

	_, err := svc.Publish("no-such-product")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUnpublish(t *testing.T) {
	svc, repo := newTestCatalog()
	_, err := svc.Import(context.Background(), "42", 1999, "EUR", "default")
	require.NoError(t, err)
	_, err = svc.Publish("cool-shirt")
	require.NoError(t, err)

	require.NoError(t, svc.Unpublish("cool-shirt"))
	stored, err := repo.GetBySlug("cool-shirt")
	require.NoError(t, err)
	assert.False(t, stored.Published)

	assert.ErrorIs(t, svc.Unpublish("no-such-product"), ErrProductNotFound)
}

func TestFSThemeResolver(t *testing.T) {
	dir := t.TempDir()
	themeDir := filepath.Join(dir, "themes", "default")
	require.NoError(t, os.MkdirAll(themeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(themeDir, "product.html"), []byte("<html></html>"), 0o644))

	resolver := FSThemeResolver{ViewsDir: dir}
	assert.True(t, resolver.ThemeExists("default"))
	assert.False(t, resolver.ThemeExists("missing"))
	assert.False(t, resolver.ThemeExists(""))
	assert.False(t, resolver.ThemeExists("../default"))
	assert.False(t, resolver.ThemeExists("a/b"))
}
