package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cookiebot_orders_placed_total",
		Help: "Total number of orders successfully placed.",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cookiebot_orders_cancelled_total",
		Help: "Total number of orders cancelled.",
	})

	OrdersReorderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cookiebot_orders_reordered_total",
		Help: "Total number of reorders created from a previous order.",
	})

	RuleRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookiebot_rule_rejections_total",
		Help: "Orders rejected by a business rule.",
	},
		[]string{"rule"},
	)

	RefundChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookiebot_refund_checks_total",
		Help: "Refund eligibility checks by outcome.",
	},
		[]string{"outcome"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookiebot_operation_errors_total",
		Help: "Total number of errors encountered during ledger operations.",
	},
		[]string{"operation"},
	)
)
