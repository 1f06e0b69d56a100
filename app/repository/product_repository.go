package repository

import (
	"github.com/linkmint/linkmint/app/models"
	"gorm.io/gorm"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product in the database
func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetBySlug retrieves a product by its slug
func (r *productRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByFulfillmentID retrieves a product by its fulfillment provider id
func (r *productRepository) GetByFulfillmentID(fulfillmentID string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("fulfillment_product_id = ?", fulfillmentID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update updates an existing product in the database
func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// SetPublished flips the publish flag for a product by slug
func (r *productRepository) SetPublished(slug string, published bool) error {
	tx := r.db.Model(&models.Product{}).Where("slug = ?", slug).Update("published", published)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves products with pagination
func (r *productRepository) List(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, err
}

// ListPublished retrieves published products with pagination
func (r *productRepository) ListPublished(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("published = ?", true).Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, err
}

// SlugExists checks if a slug already exists
func (r *productRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Count returns the total number of products
func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}
