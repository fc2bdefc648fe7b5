// Package fulfillment reacts to reconciled payments: once an order is paid
// it moves catalog stock into sold counters, exactly once per order.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ceylonkart/storefront/internal/catalog"
	"github.com/ceylonkart/storefront/internal/orders"
	"github.com/ceylonkart/storefront/internal/redisx"
)

type Service struct {
	DB          *pgxpool.Pool
	Catalog     *catalog.Repo
	Redis       *redis.Client
	ServiceName string
}

// HandlePaymentUpdated is wired as the consumer handler for
// order.payment.updated. Deliveries may repeat; the redis dedup key is the
// fast path and the fulfillments marker row is the guarantee.
func (s *Service) HandlePaymentUpdated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventPaymentUpdated {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	var p orders.PaymentUpdatedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return err
	}
	if p.PaymentStatus != orders.PaymentPaid {
		return nil
	}

	first, err := s.markFulfilled(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	for _, it := range p.Items {
		if it.ProductID == "" || it.Qty <= 0 {
			continue
		}
		ok, err := s.Catalog.RecordSale(ctx, it.ProductID, it.Qty)
		if err != nil {
			return err
		}
		if !ok {
			// Paid order against insufficient recorded stock. Operational
			// follow-up, not a processing failure.
			log.Printf("ALERT fulfillment: stock short for product=%s order=%s qty=%d",
				it.ProductID, p.OrderID, it.Qty)
		}
	}
	log.Printf("fulfillment recorded: order=%s items=%d", p.OrderID, len(p.Items))
	return nil
}

// markFulfilled claims the order. Only the first claim wins.
func (s *Service) markFulfilled(ctx context.Context, orderID string) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		INSERT INTO fulfillments (order_id) VALUES ($1)
		ON CONFLICT (order_id) DO NOTHING`, orderID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
