package repository

import (
	"github.com/linkmint/linkmint/app/models"
	"gorm.io/gorm"
)

// ProductRepository defines the interface for product catalog operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetBySlug(slug string) (*models.Product, error)
	GetByFulfillmentID(fulfillmentID string) (*models.Product, error)
	Update(product *models.Product) error
	SetPublished(slug string, published bool) error
	List(offset, limit int) ([]models.Product, error)
	ListPublished(offset, limit int) ([]models.Product, error)
	SlugExists(slug string) (bool, error)
	Count() (int64, error)
}

// OrderRepository defines the interface for order persistence. CreateIfNotExists
// is the idempotency primitive: it inserts the order unless a row with the same
// payment event id already exists, and reports which of the two happened.
type OrderRepository interface {
	CreateIfNotExists(order *models.Order) (bool, *models.Order, error)
	GetByPaymentEventID(paymentEventID string) (*models.Order, error)
	MarkSubmitted(id uint, fulfillmentOrderID string) error
	MarkFailed(id uint, reason string) error
	MarkPending(id uint) (bool, error)
	List(offset, limit int) ([]models.Order, error)
	Count() (int64, error)
}

// CredentialRepository defines the interface for operator-set API keys
type CredentialRepository interface {
	Set(provider, secretKey string) error
	Get(provider string) (*models.Credential, error)
	All() ([]models.Credential, error)
}

// WebhookEventRepository defines the interface for raw webhook payload storage
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Product      ProductRepository
	Order        OrderRepository
	Credential   CredentialRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:      NewProductRepository(db),
		Order:        NewOrderRepository(db),
		Credential:   NewCredentialRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
