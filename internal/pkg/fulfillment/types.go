package fulfillment

// StoreProduct is the provider catalog data returned for an imported product.
type StoreProduct struct {
	ID           string
	Name         string
	ThumbnailURL string
	VariantID    int64
	RetailPrice  string
	Currency     string
}

// OrderInput describes an order submission to the provider.
type OrderInput struct {
	ExternalID     string
	ProductID      string
	VariantID      int64
	Quantity       int
	RecipientName  string
	RecipientEmail string
	ShippingJSON   string
}

// OrderResult is the provider's acknowledgment of a submitted order.
type OrderResult struct {
	ProviderOrderID string
	Status          string
}
