package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainMu        sync.Mutex
	domainNamespace string

	// OrdersCreatedTotal counts orders appended to the ledger.
	OrdersCreatedTotal *prometheus.CounterVec
	// OrderRevenueTotal sums order grand totals.
	OrderRevenueTotal prometheus.Counter
	// DiscountLinesTotal counts discount lines applied per rule.
	DiscountLinesTotal *prometheus.CounterVec
	// CouponRejectedTotal counts coupons that were typed but not recognised.
	CouponRejectedTotal prometheus.Counter
	// StoreSavesTotal counts store writes by outcome.
	StoreSavesTotal *prometheus.CounterVec
	// ExportsTotal counts CSV and receipt files written by kind and outcome.
	ExportsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics registers the domain collectors with reg. Collectors are created
// on the first call for a namespace and shared by every registry passed afterwards.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainMu.Lock()
	defer domainMu.Unlock()
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if OrdersCreatedTotal == nil || domainNamespace != namespace {
		domainNamespace = namespace
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of orders created by mode and payment method.",
		}, []string{"mode", "payment"})
		OrderRevenueTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_revenue_total",
			Help:      "Sum of order grand totals.",
		})
		DiscountLinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_lines_total",
			Help:      "Count of discount lines applied by rule.",
		}, []string{"rule"})
		CouponRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_rejected_total",
			Help:      "Number of unrecognised coupons entered at checkout.",
		})
		StoreSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_saves_total",
			Help:      "Count of store writes by outcome.",
		}, []string{"result"})
		ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Count of exported files by kind and outcome.",
		}, []string{"kind", "result"})
	}

	mustRegisterCollector(reg, OrdersCreatedTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			OrdersCreatedTotal = v
		}
	})
	mustRegisterCollector(reg, OrderRevenueTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			OrderRevenueTotal = v
		}
	})
	mustRegisterCollector(reg, DiscountLinesTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			DiscountLinesTotal = v
		}
	})
	mustRegisterCollector(reg, CouponRejectedTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			CouponRejectedTotal = v
		}
	})
	mustRegisterCollector(reg, StoreSavesTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			StoreSavesTotal = v
		}
	})
	mustRegisterCollector(reg, ExportsTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			ExportsTotal = v
		}
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

// RecordOrder is a no-op until MustRegisterDomainMetrics ran.
func RecordOrder(mode, payment string, total float64) {
	if OrdersCreatedTotal != nil {
		OrdersCreatedTotal.WithLabelValues(mode, payment).Inc()
	}
	if OrderRevenueTotal != nil && total > 0 {
		OrderRevenueTotal.Add(total)
	}
}

// RecordDiscount counts one applied discount line.
func RecordDiscount(rule string) {
	if DiscountLinesTotal != nil {
		DiscountLinesTotal.WithLabelValues(rule).Inc()
	}
}

// RecordCouponRejected counts one unrecognised coupon.
func RecordCouponRejected() {
	if CouponRejectedTotal != nil {
		CouponRejectedTotal.Inc()
	}
}

// RecordStoreSave counts a store write.
func RecordStoreSave(err error) {
	if StoreSavesTotal != nil {
		StoreSavesTotal.WithLabelValues(result(err)).Inc()
	}
}

// RecordExport counts a file written by the export or receipt sinks.
func RecordExport(kind string, err error) {
	if ExportsTotal != nil {
		ExportsTotal.WithLabelValues(kind, result(err)).Inc()
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
