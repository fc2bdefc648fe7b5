package httpx

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ceylonkart/storefront/internal/catalog"
	"github.com/ceylonkart/storefront/internal/orders"
	"github.com/ceylonkart/storefront/internal/promo"
)

// Store interfaces are defined here, on the consumer side, so handlers can
// be exercised against mocks.

type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*promo.Promo, error)
	Create(ctx context.Context, p *promo.Promo) error
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]promo.Promo, error)
	Redeem(ctx context.Context, id string) (int, error)
}

type OrderStore interface {
	Create(ctx context.Context, in orders.NewOrder) (*orders.Order, error)
	Get(ctx context.Context, id string) (*orders.Order, error)
	List(ctx context.Context, limit int) ([]orders.Order, error)
	SetStatus(ctx context.Context, id string, status orders.Status) error
	ApplyPaymentResult(ctx context.Context, id string, ps orders.PaymentStatus, os orders.Status, paymentID string, paidAmount *float64) (bool, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *catalog.Product) error
	Get(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
