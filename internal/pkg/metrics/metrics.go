package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts processed webhook deliveries by outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkmint",
		Name:      "webhook_events_total",
		Help:      "Webhook deliveries by processing result.",
	}, []string{"result"})

	// FulfillmentSubmissions counts order submissions to the provider.
	FulfillmentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkmint",
		Name:      "fulfillment_submissions_total",
		Help:      "Fulfillment order submissions by outcome.",
	}, []string{"outcome"})

	// ProductPageViews counts rendered product pages.
	ProductPageViews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "linkmint",
		Name:      "product_page_views_total",
		Help:      "Rendered product page views.",
	})
)
