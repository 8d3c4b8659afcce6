package order

import (
	"context"

	"github.com/noah-isme/planet-pizzaria/internal/events"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
)

// MetricsNotifier records created orders and their discount lines.
func MetricsNotifier() events.Notifier {
	return events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		if ev.Topic != events.TopicOrderCreated {
			return nil
		}
		o, ok := ev.Data.(Order)
		if !ok {
			return nil
		}
		obs.RecordOrder(string(o.Mode), string(o.PaymentMethod), o.Total.InexactFloat64())
		for _, line := range o.DiscountLines {
			obs.RecordDiscount(line.Rule)
		}
		return nil
	})
}
