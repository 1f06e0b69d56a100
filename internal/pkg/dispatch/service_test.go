package dispatch

import (
	"context"
	"testing"

	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/internal/pkg/fulfillment"
	"github.com/linkmint/linkmint/internal/pkg/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOrderStore struct {
	byEventID map[string]*models.Order
	nextID    uint
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{byEventID: map[string]*models.Order{}, nextID: 1}
}

func (s *fakeOrderStore) CreateIfNotExists(order *models.Order) (bool, *models.Order, error) {
	if existing, ok := s.byEventID[order.PaymentEventID]; ok {
		cp := *existing
		return false, &cp, nil
	}
	cp := *order
	cp.ID = s.nextID
	s.nextID++
	cp.Status = models.OrderStatusPending
	s.byEventID[order.PaymentEventID] = &cp
	out := cp
	return true, &out, nil
}

func (s *fakeOrderStore) MarkSubmitted(id uint, fulfillmentOrderID string) error {
	for _, o := range s.byEventID {
		if o.ID == id && o.Status != models.OrderStatusSubmitted {
			o.Status = models.OrderStatusSubmitted
			o.FulfillmentOrderID = fulfillmentOrderID
			o.LastError = ""
		}
	}
	return nil
}

func (s *fakeOrderStore) MarkFailed(id uint, reason string) error {
	for _, o := range s.byEventID {
		if o.ID == id && o.Status != models.OrderStatusSubmitted {
			o.Status = models.OrderStatusFailed
			o.LastError = reason
		}
	}
	return nil
}

func (s *fakeOrderStore) MarkPending(id uint) (bool, error) {
	for _, o := range s.byEventID {
		if o.ID == id && o.Status == models.OrderStatusFailed {
			o.Status = models.OrderStatusPending
			return true, nil
		}
	}
	return false, nil
}

// staleFailedStore returns a stale failed-status snapshot from
// CreateIfNotExists so that multiple redeliveries all observe the row
// before any of them claims it. The claim itself stays exclusive.
type staleFailedStore struct {
	inner *fakeOrderStore
}

func (s *staleFailedStore) CreateIfNotExists(order *models.Order) (bool, *models.Order, error) {
	created, stored, err := s.inner.CreateIfNotExists(order)
	if err == nil && !created {
		cp := *stored
		cp.Status = models.OrderStatusFailed
		return false, &cp, nil
	}
	return created, stored, err
}

func (s *staleFailedStore) MarkSubmitted(id uint, fulfillmentOrderID string) error {
	return s.inner.MarkSubmitted(id, fulfillmentOrderID)
}

func (s *staleFailedStore) MarkFailed(id uint, reason string) error {
	return s.inner.MarkFailed(id, reason)
}

func (s *staleFailedStore) MarkPending(id uint) (bool, error) {
	return s.inner.MarkPending(id)
}

type fakeProductStore struct {
	products map[string]*models.Product
}

func (s *fakeProductStore) GetBySlug(slug string) (*models.Product, error) {
	if p, ok := s.products[slug]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSubmitter struct {
	calls int
	err   error
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, in fulfillment.OrderInput) (*fulfillment.OrderResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fulfillment.OrderResult{ProviderOrderID: "pf_1", Status: "draft"}, nil
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	f.sent = append(f.sent, subject)
	return nil
}

func testProduct() *models.Product {
	return &models.Product{
		ID:                   1,
		Slug:                 "test-shirt",
		Title:                "Test Shirt",
		FulfillmentProductID: "12345",
		FulfillmentVariantID: 987,
		PriceCents:           1999,
		Currency:             "EUR",
		Theme:                "default",
		Published:            true,
	}
}

func checkoutEvent(id string) *payments.Event {
	return &payments.Event{
		ID:            id,
		Type:          payments.EventTypeCheckoutCompleted,
		ProductSlug:   "test-shirt",
		CustomerEmail: "buyer@example.com",
		CustomerName:  "Buyer",
	}
}

func newTestService() (*Service, *fakeOrderStore, *fakeSubmitter, *fakeMailer) {
	orders := newFakeOrderStore()
	products := &fakeProductStore{products: map[string]*models.Product{"test-shirt": testProduct()}}
	submitter := &fakeSubmitter{}
	mailer := &fakeMailer{}
	return NewService(orders, products, submitter, mailer), orders, submitter, mailer
}

func TestHandleEvent_SubmitsExactlyOnce(t *testing.T) {
	svc, orders, submitter, _ := newTestService()

	result, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	require.NoError(t, err)
	assert.Equal(t, ResultSubmitted, result)

	// Redeliveries of the same event must not trigger another submission.
	for i := 0; i < 4; i++ {
		result, err = svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
		require.NoError(t, err)
		assert.Equal(t, ResultDuplicate, result)
	}

	assert.Equal(t, 1, submitter.calls)
	assert.Len(t, orders.byEventID, 1)
	assert.Equal(t, models.OrderStatusSubmitted, orders.byEventID["evt_1"].Status)
	assert.Equal(t, "pf_1", orders.byEventID["evt_1"].FulfillmentOrderID)
}

func TestHandleEvent_DistinctEventsDistinctOrders(t *testing.T) {
	svc, orders, submitter, _ := newTestService()

	for _, id := range []string{"evt_1", "evt_2", "evt_3"} {
		result, err := svc.HandleEvent(context.Background(), checkoutEvent(id))
		require.NoError(t, err)
		assert.Equal(t, ResultSubmitted, result)
	}

	assert.Equal(t, 3, submitter.calls)
	assert.Len(t, orders.byEventID, 3)
}

func TestHandleEvent_IgnoresNonDispatchEventTypes(t *testing.T) {
	svc, orders, submitter, _ := newTestService()

	ev := &payments.Event{ID: "evt_9", Type: "invoice.created"}
	result, err := svc.HandleEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, result)
	assert.Zero(t, submitter.calls)
	assert.Empty(t, orders.byEventID)
}

func TestHandleEvent_UnknownSlugIsInvalid(t *testing.T) {
	svc, orders, submitter, _ := newTestService()

	ev := checkoutEvent("evt_1")
	ev.ProductSlug = "no-such-product"
	result, err := svc.HandleEvent(context.Background(), ev)
	assert.Error(t, err)
	assert.Equal(t, ResultInvalid, result)
	assert.Zero(t, submitter.calls)
	assert.Empty(t, orders.byEventID)
}

func TestHandleEvent_MissingSlugIsInvalid(t *testing.T) {
	svc, _, submitter, _ := newTestService()

	ev := checkoutEvent("evt_1")
	ev.ProductSlug = ""
	result, err := svc.HandleEvent(context.Background(), ev)
	assert.Error(t, err)
	assert.Equal(t, ResultInvalid, result)
	assert.Zero(t, submitter.calls)
}

func TestHandleEvent_UnavailableIsRetriedOnRedelivery(t *testing.T) {
	svc, orders, submitter, _ := newTestService()
	submitter.err = fulfillment.ErrUnavailable

	result, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	assert.Error(t, err)
	assert.Equal(t, ResultRetry, result)
	assert.Equal(t, models.OrderStatusFailed, orders.byEventID["evt_1"].Status)

	// Redelivery after the provider recovers: failed flips back to pending
	// and the submission is attempted again.
	submitter.err = nil
	result, err = svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	require.NoError(t, err)
	assert.Equal(t, ResultSubmitted, result)
	assert.Equal(t, 2, submitter.calls)
	assert.Len(t, orders.byEventID, 1)
	assert.Equal(t, models.OrderStatusSubmitted, orders.byEventID["evt_1"].Status)
}

func TestHandleEvent_RejectedIsNotRetried(t *testing.T) {
	svc, orders, submitter, _ := newTestService()
	submitter.err = fulfillment.ErrRejected

	result, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	assert.Error(t, err)
	assert.Equal(t, ResultRejected, result)
	assert.Equal(t, models.OrderStatusFailed, orders.byEventID["evt_1"].Status)
	assert.NotEmpty(t, orders.byEventID["evt_1"].LastError)
}

func TestHandleEvent_FailedRetryClaimIsExclusive(t *testing.T) {
	orders := newFakeOrderStore()
	orders.byEventID["evt_1"] = &models.Order{
		ID:             7,
		PaymentEventID: "evt_1",
		ProductSlug:    "test-shirt",
		CustomerEmail:  "buyer@example.com",
		Status:         models.OrderStatusFailed,
	}
	products := &fakeProductStore{products: map[string]*models.Product{"test-shirt": testProduct()}}
	submitter := &fakeSubmitter{}
	svc := NewService(&staleFailedStore{inner: orders}, products, submitter, nil)

	// Two redeliveries both read the row while it still says failed. Only
	// the claim winner may submit; the loser must ack as duplicate.
	first, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	require.NoError(t, err)
	assert.Equal(t, ResultSubmitted, first)

	second, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, second)

	assert.Equal(t, 1, submitter.calls)
	assert.Len(t, orders.byEventID, 1)
	assert.Equal(t, models.OrderStatusSubmitted, orders.byEventID["evt_1"].Status)
}

func TestHandleEvent_RaceLoserAcknowledgesWithoutSubmitting(t *testing.T) {
	svc, orders, submitter, _ := newTestService()

	// Simulate the concurrent winner holding a pending row: the loser's
	// CreateIfNotExists returns created=false with status pending.
	orders.byEventID["evt_1"] = &models.Order{
		ID:             7,
		PaymentEventID: "evt_1",
		ProductSlug:    "test-shirt",
		Status:         models.OrderStatusPending,
	}

	result, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, result)
	assert.Zero(t, submitter.calls)
	assert.Len(t, orders.byEventID, 1)
}

func TestHandleEvent_ConfirmationMailOnSuccess(t *testing.T) {
	svc, _, _, mailer := newTestService()

	_, err := svc.HandleEvent(context.Background(), checkoutEvent("evt_1"))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Your order is confirmed", mailer.sent[0])
}

func TestHandleEvent_RefundSendsMailWithoutOrder(t *testing.T) {
	svc, orders, submitter, mailer := newTestService()

	ev := &payments.Event{
		ID:            "evt_r",
		Type:          payments.EventTypeChargeRefunded,
		CustomerEmail: "buyer@example.com",
	}
	result, err := svc.HandleEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, result)
	assert.Zero(t, submitter.calls)
	assert.Empty(t, orders.byEventID)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Your refund is completed", mailer.sent[0])
}
