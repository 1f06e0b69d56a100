package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/app/repository"
	"github.com/linkmint/linkmint/internal/pkg/cache"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrNotPublishable is returned when a product fails the publish guard:
	// positive price, currency set, theme template present.
	ErrNotPublishable = errors.New("product not publishable")
)

// ProductFetcher is the fulfillment-provider surface the catalog needs.
// Satisfied by *fulfillment.Client.
type ProductFetcher interface {
	GetStoreProduct(ctx context.Context, productID string) (*fulfillment.StoreProduct, error)
}

// ThemeResolver reports whether a theme template exists.
type ThemeResolver interface {
	ThemeExists(name string) bool
}

// Service manages the product catalog: import from the fulfillment
// provider, publish guard, listing.
type Service struct {
	products repository.ProductRepository
	fetcher  ProductFetcher
	themes   ThemeResolver
}

// NewService creates a catalog service.
func NewService(products repository.ProductRepository, fetcher ProductFetcher, themes ThemeResolver) *Service {
	return &Service{products: products, fetcher: fetcher, themes: themes}
}

// Import fetches a provider product and creates an unpublished catalog entry.
func (s *Service) Import(ctx context.Context, fulfillmentID string, priceCents int64, currency, theme string) (*models.Product, error) {
	if strings.TrimSpace(fulfillmentID) == "" {
		return nil, errors.New("fulfillment product id is required")
	}
	if theme == "" {
		theme = "default"
	}

	data, err := s.fetcher.GetStoreProduct(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(data.Name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Slug:                 slug,
		Title:                data.Name,
		Description:          data.Name,
		FulfillmentProductID: fulfillmentID,
		FulfillmentVariantID: data.VariantID,
		PriceCents:           priceCents,
		Currency:             strings.ToUpper(strings.TrimSpace(currency)),
		Theme:                theme,
		Published:            false,
		ImageURL:             data.ThumbnailURL,
	}
	if err := product.SetMetadata(map[string]string{
		"og_title":       data.Name,
		"og_description": data.Name,
		"og_image":       data.ThumbnailURL,
	}); err != nil {
		return nil, err
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.products.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Publish marks a product as published after checking the publish guard.
func (s *Service) Publish(slug string) (*models.Product, error) {
	product, err := s.products.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if product.PriceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrNotPublishable)
	}
	if strings.TrimSpace(product.Currency) == "" {
		return nil, fmt.Errorf("%w: currency is not set", ErrNotPublishable)
	}
	if !s.themes.ThemeExists(product.Theme) {
		return nil, fmt.Errorf("%w: theme %q has no template", ErrNotPublishable, product.Theme)
	}

	if err := s.products.SetPublished(slug, true); err != nil {
		return nil, err
	}
	_ = cache.Delete("product:" + slug)
	product.Published = true
	return product, nil
}

// Unpublish clears the publish flag; the product page stops being served.
func (s *Service) Unpublish(slug string) error {
	err := s.products.SetPublished(slug, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	if err == nil {
		_ = cache.Delete("product:" + slug)
	}
	return err
}

// Get retrieves a product by slug.
func (s *Service) Get(slug string) (*models.Product, error) {
	product, err := s.products.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// List returns catalog entries, optionally only published ones.
func (s *Service) List(publishedOnly bool, offset, limit int) ([]models.Product, error) {
	if publishedOnly {
		return s.products.ListPublished(offset, limit)
	}
	return s.products.List(offset, limit)
}

func (s *Service) uniqueSlug(title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 2; ; i++ {
		exists, err := s.products.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// FSThemeResolver resolves themes against template files on disk.
type FSThemeResolver struct {
	ViewsDir string
}

// ThemeExists reports whether views/themes/<name>/product.html exists.
func (r FSThemeResolver) ThemeExists(name string) bool {
	if name == "" || strings.ContainsAny(name, "/\\.") {
		return false
	}
	info, err := os.Stat(filepath.Join(r.ViewsDir, "themes", name, "product.html"))
	return err == nil && !info.IsDir()
}
