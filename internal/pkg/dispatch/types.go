package dispatch

import (
	"context"

	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
)

// Result classifies the outcome of one webhook delivery. The webhook
// controller maps it to an HTTP status: everything except ResultRetry is
// acknowledged with 2xx so the processor stops redelivering.
type Result string

const (
	// ResultSubmitted means a fulfillment order was submitted for this event.
	ResultSubmitted Result = "submitted"
	// ResultDuplicate means the event was already handled (or is being
	// handled by a concurrent delivery); nothing was submitted.
	ResultDuplicate Result = "duplicate"
	// ResultIgnored means the event type is not dispatch-eligible.
	ResultIgnored Result = "ignored"
	// ResultInvalid means the event was eligible but unusable (e.g. unknown
	// product slug); acknowledged because redelivery cannot fix it.
	ResultInvalid Result = "invalid"
	// ResultRejected means the provider permanently rejected the order.
	ResultRejected Result = "rejected"
	// ResultRetry means a transient failure; the caller should answer 5xx
	// so the processor redelivers.
	ResultRetry Result = "retry"
)

// OrderStore is the subset of order persistence the dispatcher needs.
type OrderStore interface {
	CreateIfNotExists(order *models.Order) (bool, *models.Order, error)
	MarkSubmitted(id uint, fulfillmentOrderID string) error
	MarkFailed(id uint, reason string) error
	MarkPending(id uint) (bool, error)
}

// ProductStore resolves the product referenced by a payment event.
type ProductStore interface {
	GetBySlug(slug string) (*models.Product, error)
}

// Submitter submits orders to the fulfillment provider.
type Submitter interface {
	SubmitOrder(ctx context.Context, in fulfillment.OrderInput) (*fulfillment.OrderResult, error)
}

// Mailer sends transactional email. Failures are logged, never propagated.
type Mailer interface {
	Send(to, subject, html, text string) error
}
