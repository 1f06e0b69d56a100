package payments

// CheckoutSessionInput describes the one-item payment session created for a
// storefront product.
type CheckoutSessionInput struct {
	ProductTitle  string
	PriceCents    int64
	Currency      string
	ProductSlug   string
	OrderPublicID string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the subset of the processor response we use.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is the normalized shape of a processor webhook notification.
type Event struct {
	ID            string
	Type          string
	ProductSlug   string
	OrderPublicID string
	CustomerEmail string
	CustomerName  string
	ShippingJSON  string
	RawPayload    []byte
}

// Charge is the subset of a processor charge used for revenue stats.
type Charge struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Paid     bool   `json:"paid"`
	Refunded bool   `json:"refunded"`
	Created  int64  `json:"created"`
}
