package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/app/models"
	"github.com/linkmint/linkmint/internal/pkg/dispatch"
	"github.com/linkmint/linkmint/internal/pkg/metrics"
	"github.com/linkmint/linkmint/internal/pkg/payments"
)

// HandlePaymentWebhook serves POST /api/payment/webhook. Signature failures
// are rejected before any side effect. Verified events are recorded for
// audit, then handed to the dispatcher; only transient fulfillment failures
// answer 5xx so the processor redelivers.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	if err := payments.VerifySignature(rawBody, signature, cfg.StripeWebhookSecret, time.Now()); err != nil {
		if errors.Is(err, payments.ErrSignatureExpired) {
			metrics.WebhookEvents.WithLabelValues("signature_expired").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "signature_expired"})
		}
		metrics.WebhookEvents.WithLabelValues("signature_invalid").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := payments.ParseEvent(rawBody)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("invalid_payload").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	// Audit record; redeliveries reuse the stored row. Order-level
	// deduplication happens in the dispatcher, so a redelivered event
	// still gets a dispatch attempt (that is the retry path).
	_, stored, err := repos.WebhookEvent.CreateIfNotExists(&models.PaymentWebhookEvent{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, dispatchErr := dispatcher.HandleEvent(ctx, event)
	errMsg := ""
	if dispatchErr != nil {
		errMsg = dispatchErr.Error()
	}
	_ = repos.WebhookEvent.MarkProcessed(stored.ID, errMsg)

	metrics.WebhookEvents.WithLabelValues(string(result)).Inc()
	if result == dispatch.ResultRetry {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "fulfillment_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "result": string(result)})
}
