package httpx

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ceylonkart/storefront/internal/orders"
	"github.com/ceylonkart/storefront/internal/promo"
)

// mockPromoStore implements PromoStore against an in-memory map keyed by
// normalized code.
type mockPromoStore struct {
	promos    map[string]*promo.Promo
	createErr error
	redeemErr error
	redeemed  []string
}

func newMockPromoStore(ps ...*promo.Promo) *mockPromoStore {
	m := &mockPromoStore{promos: map[string]*promo.Promo{}}
	for _, p := range ps {
		m.promos[promo.Normalize(p.Code)] = p
	}
	return m
}

func (m *mockPromoStore) GetByCode(_ context.Context, code string) (*promo.Promo, error) {
	p, ok := m.promos[promo.Normalize(code)]
	if !ok {
		return nil, promo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPromoStore) Create(_ context.Context, p *promo.Promo) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := promo.Normalize(p.Code)
	if _, ok := m.promos[key]; ok {
		return promo.ErrCodeExists
	}
	p.Code = key
	m.promos[key] = p
	return nil
}

func (m *mockPromoStore) Delete(_ context.Context, id string) error {
	for key, p := range m.promos {
		if p.ID == id {
			delete(m.promos, key)
			return nil
		}
	}
	return promo.ErrNotFound
}

func (m *mockPromoStore) ListActive(_ context.Context) ([]promo.Promo, error) {
	var out []promo.Promo
	for _, p := range m.promos {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPromoStore) Redeem(_ context.Context, id string) (int, error) {
	if m.redeemErr != nil {
		return 0, m.redeemErr
	}
	for _, p := range m.promos {
		if p.ID == id {
			if p.MaxUses != nil && p.Uses >= *p.MaxUses {
				return 0, promo.ErrUsageLimit
			}
			p.Uses++
			m.redeemed = append(m.redeemed, id)
			return p.Uses, nil
		}
	}
	return 0, promo.ErrNotFound
}

// mockOrderStore mirrors the repo's guarded-update semantics in memory.
type mockOrderStore struct {
	orders    map[string]*orders.Order
	createErr error
	applyErr  error
	nextID    string
}

func newMockOrderStore(os ...*orders.Order) *mockOrderStore {
	m := &mockOrderStore{orders: map[string]*orders.Order{}, nextID: "order-1"}
	for _, o := range os {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderStore) Create(_ context.Context, in orders.NewOrder) (*orders.Order, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	total, err := in.Validate()
	if err != nil {
		return nil, err
	}
	o := &orders.Order{
		ID:            m.nextID,
		UserID:        in.UserID,
		Items:         in.Items,
		Subtotal:      in.Subtotal,
		Discount:      in.Discount,
		Shipping:      in.Shipping,
		Total:         total,
		PaymentStatus: orders.PaymentPending,
		OrderStatus:   orders.StatusCreated,
		CustomerInfo:  in.CustomerInfo,
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderStore) Get(_ context.Context, id string) (*orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderStore) List(_ context.Context, _ int) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderStore) SetStatus(_ context.Context, id string, status orders.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.OrderStatus = status
	return nil
}

func (m *mockOrderStore) ApplyPaymentResult(_ context.Context, id string, ps orders.PaymentStatus, os orders.Status, paymentID string, paidAmount *float64) (bool, error) {
	if m.applyErr != nil {
		return false, m.applyErr
	}
	o, ok := m.orders[id]
	if !ok {
		return false, orders.ErrNotFound
	}
	if o.PaymentStatus.Terminal() {
		return false, nil
	}
	o.PaymentStatus = ps
	o.OrderStatus = os
	if paymentID != "" {
		o.PayherePaymentID = paymentID
	}
	if paidAmount != nil {
		o.ActualPaidAmount = paidAmount
	}
	return true, nil
}

// mockPublisher records published messages.
type mockPublisher struct {
	keys   []string
	values [][]byte
}

func (m *mockPublisher) Publish(key, value []byte, _ ...kafkago.Header) {
	m.keys = append(m.keys, string(key))
	m.values = append(m.values, value)
}
