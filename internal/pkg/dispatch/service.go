package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
	"github.com/linkmint/linkmint/internal/pkg/metrics"
	"github.com/linkmint/linkmint/internal/pkg/payments"
	"gorm.io/gorm"
)

// Service drives the pay-to-fulfill handoff: it turns a verified payment
// event into at most one order row and at most one fulfillment submission,
// no matter how often the processor delivers the event.
type Service struct {
	orders   OrderStore
	products ProductStore
	fulfill  Submitter
	mailer   Mailer
}

// NewService creates a dispatcher from its collaborators.
func NewService(orders OrderStore, products ProductStore, fulfill Submitter, mailer Mailer) *Service {
	return &Service{
		orders:   orders,
		products: products,
		fulfill:  fulfill,
		mailer:   mailer,
	}
}

// HandleEvent processes one signature-verified webhook event.
//
// Order status transitions: pending -> submitted (terminal) and
// pending -> failed -> pending (on redelivery). The unique constraint on
// payment_event_id is the sole concurrency control: the loser of a
// concurrent duplicate delivery sees created=false and acknowledges
// without submitting.
func (s *Service) HandleEvent(ctx context.Context, ev *payments.Event) (Result, error) {
	switch ev.Type {
	case payments.EventTypeCheckoutCompleted:
		return s.dispatchCheckout(ctx, ev)
	case payments.EventTypeChargeRefunded:
		s.sendRefundMail(ev)
		return ResultIgnored, nil
	default:
		return ResultIgnored, nil
	}
}

func (s *Service) dispatchCheckout(ctx context.Context, ev *payments.Event) (Result, error) {
	if ev.ProductSlug == "" {
		return ResultInvalid, errors.New("event carries no product slug")
	}

	product, err := s.products.GetBySlug(ev.ProductSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResultInvalid, fmt.Errorf("unknown product slug %q", ev.ProductSlug)
		}
		return ResultRetry, err
	}

	publicID := ev.OrderPublicID
	if publicID == "" {
		publicID = uuid.NewString()
	}
	order := &models.Order{
		PaymentEventID: ev.ID,
		PublicID:       publicID,
		ProductSlug:    product.Slug,
		CustomerEmail:  ev.CustomerEmail,
		CustomerName:   ev.CustomerName,
		ShippingJSON:   ev.ShippingJSON,
		Status:         models.OrderStatusPending,
	}

	created, stored, err := s.orders.CreateIfNotExists(order)
	if err != nil {
		return ResultRetry, err
	}
	if !created {
		switch stored.Status {
		case models.OrderStatusSubmitted, models.OrderStatusPending:
			// Already handled, or a concurrent delivery holds the row.
			return ResultDuplicate, nil
		case models.OrderStatusFailed:
			// Redelivery of a previously failed event: claim the retry.
			// The status guard lets exactly one concurrent redelivery
			// win the claim; losers ack as duplicate.
			claimed, err := s.orders.MarkPending(stored.ID)
			if err != nil {
				return ResultRetry, err
			}
			if !claimed {
				return ResultDuplicate, nil
			}
		default:
			return ResultDuplicate, nil
		}
	}

	result, err := s.fulfill.SubmitOrder(ctx, fulfillment.OrderInput{
		ExternalID:     stored.PublicID,
		ProductID:      product.FulfillmentProductID,
		VariantID:      product.FulfillmentVariantID,
		Quantity:       1,
		RecipientName:  stored.CustomerName,
		RecipientEmail: stored.CustomerEmail,
		ShippingJSON:   stored.ShippingJSON,
	})
	if err != nil {
		reason := err.Error()
		if markErr := s.orders.MarkFailed(stored.ID, reason); markErr != nil {
			log.Printf("order %d: failed to record failure: %v", stored.ID, markErr)
		}
		if errors.Is(err, fulfillment.ErrRejected) {
			metrics.FulfillmentSubmissions.WithLabelValues("rejected").Inc()
			log.Printf("order %d: fulfillment rejected: %v", stored.ID, err)
			return ResultRejected, err
		}
		metrics.FulfillmentSubmissions.WithLabelValues("unavailable").Inc()
		return ResultRetry, err
	}

	if err := s.orders.MarkSubmitted(stored.ID, result.ProviderOrderID); err != nil {
		// Submission went through but recording it failed. Do not ack a
		// half-recorded order; the redelivery acks the pending row as
		// duplicate without resubmitting, and the missing fulfillment id
		// has to be reconciled against the provider.
		return ResultRetry, err
	}
	metrics.FulfillmentSubmissions.WithLabelValues("submitted").Inc()

	s.sendConfirmationMail(stored.CustomerEmail, product)
	return ResultSubmitted, nil
}

func (s *Service) sendConfirmationMail(to string, product *models.Product) {
	if s.mailer == nil || to == "" {
		return
	}
	subject := "Your order is confirmed"
	html := fmt.Sprintf("<p>Thanks for your purchase of <strong>%s</strong>.</p>", product.Title)
	text := fmt.Sprintf("Order confirmed for %s", product.Slug)
	if err := s.mailer.Send(to, subject, html, text); err != nil {
		log.Printf("confirmation mail to %s failed: %v", to, err)
	}
}

func (s *Service) sendRefundMail(ev *payments.Event) {
	if s.mailer == nil || ev.CustomerEmail == "" {
		return
	}
	html := "<p>Your refund has been processed.</p>"
	if err := s.mailer.Send(ev.CustomerEmail, "Your refund is completed", html, "Your refund has been processed."); err != nil {
		log.Printf("refund mail to %s failed: %v", ev.CustomerEmail, err)
	}
}
