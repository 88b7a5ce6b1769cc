package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/producthub/storefront/internal/catalog"
	kafkax "github.com/producthub/storefront/internal/kafka"
	"github.com/producthub/storefront/internal/orders"
	"github.com/producthub/storefront/internal/redisx"
)

// Service consumes order lifecycle events: it keeps an audit trail in
// the logs and raises low-stock warnings after each placed order.
// Stock bookkeeping itself happens synchronously in the order
// transaction; nothing here mutates state.
type Service struct {
	Products          *catalog.Repo
	Redis             *redis.Client
	Log               *zap.SugaredLogger
	LowStockThreshold int
}

func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id: consumer groups redeliver on rebalance
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.handlePlaced(ctx, p)
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.Infow("order status changed", "order_id", p.OrderID, "from", p.From, "to", p.To)
		return nil
	default:
		return nil
	}
}

func (s *Service) handlePlaced(ctx context.Context, p orders.OrderPlacedPayload) error {
	s.Log.Infow("order placed", "order_id", p.OrderID, "channel", p.Channel, "total", p.Total, "items", len(p.Items))

	for _, it := range p.Items {
		prod, err := s.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			// product lookups are advisory here, never fail the event
			s.Log.Warnw("product lookup failed", "product_id", it.ProductID, "err", err)
			continue
		}
		if prod.Stock <= s.LowStockThreshold {
			s.Log.Warnw("low stock", "product_id", prod.ID, "name", prod.Name, "stock", prod.Stock)
		}
	}
	return nil
}
