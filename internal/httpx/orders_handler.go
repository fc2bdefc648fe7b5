package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ceylonkart/storefront/internal/kafka"
	"github.com/ceylonkart/storefront/internal/orders"
	"github.com/ceylonkart/storefront/internal/payhere"
	"github.com/ceylonkart/storefront/internal/redisx"
)

type OrdersHandler struct {
	Store   OrderStore
	Gateway payhere.Config
	Redis   *redis.Client

	// One producer per topic, both optional in tests.
	CreatedProducer Publisher
	PaymentProducer Publisher

	Service string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/orders/create", h.createOrder)
	r.Post("/api/orders/payhere-notify", h.payhereNotify)
	r.Get("/api/orders", h.listOrders)
	r.Get("/api/orders/public/{id}", h.getPublicOrder)
	r.Get("/api/orders/{id}", h.getOrder)
	r.Get("/api/orders/{id}/status", h.getOrderStatus)
	r.Put("/api/orders/{id}", h.setOrderStatus)
}

type CreateOrderReq struct {
	UserID       string              `json:"userId"`
	Items        []orders.Item       `json:"items"`
	Subtotal     float64             `json:"subtotal"`
	Discount     float64             `json:"discount"`
	Shipping     float64             `json:"shipping"`
	CustomerInfo orders.CustomerInfo `json:"customerInfo"`
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Store.Create(ctx, orders.NewOrder{
		UserID:       req.UserID,
		Items:        req.Items,
		Subtotal:     req.Subtotal,
		Discount:     req.Discount,
		Shipping:     req.Shipping,
		CustomerInfo: req.CustomerInfo,
	})
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyItems):
			fail(w, http.StatusBadRequest, "Cart items are required")
		case errors.Is(err, orders.ErrInvalidTotal):
			fail(w, http.StatusBadRequest, "Invalid total amount")
		default:
			log.Printf("order create: %v", err)
			fail(w, http.StatusInternalServerError, "Order creation failed")
		}
		return
	}

	payment, err := h.Gateway.BuildCheckout(order.ID, order.Total, payhere.Customer{
		FirstName: order.CustomerInfo.FirstName,
		LastName:  order.CustomerInfo.LastName,
		Email:     order.CustomerInfo.Email,
		Phone:     order.CustomerInfo.Phone,
		Address:   order.CustomerInfo.Address,
		City:      order.CustomerInfo.City,
	})
	if err != nil {
		// The order stays pending; without a signed payload the client
		// cannot reach the gateway.
		log.Printf("ALERT payhere: %v (order=%s)", err, order.ID)
		fail(w, http.StatusInternalServerError, "Payment configuration error")
		return
	}

	h.cacheStatus(ctx, order.ID, order.PaymentStatus, order.OrderStatus)
	h.publishCreated(order, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"payment": payment,
		"orderId": order.ID,
	})
}

// payhereNotify is the gateway IPN endpoint. It must cope with duplicated
// and out-of-order deliveries and, outside of signature failures, always
// acknowledge so the gateway stops retrying.
func (h *OrdersHandler) payhereNotify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	n := payhere.ParseNotification(r.PostForm)

	if err := h.Gateway.VerifyNotification(n); err != nil {
		if errors.Is(err, payhere.ErrNotConfigured) {
			// Cannot verify anything without the secret. Ack to stop the
			// retry storm; this needs operator attention, not retries.
			log.Printf("ALERT payhere notify: merchant secret not configured, order=%s", n.OrderID)
			h.ack(w)
			return
		}
		// Possible forgery, logged apart from ordinary validation noise.
		log.Printf("payhere notify: invalid signature order=%s payment=%s", n.OrderID, n.PaymentID)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Invalid signature"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Fast-path dedup on payment id; the guarded update below remains the
	// authority.
	seenKey := fmt.Sprintf(redisx.KeyNotifySeen, n.PaymentID, n.StatusCode)
	if h.Redis != nil && n.PaymentID != "" {
		if seen, _ := redisx.Exists(ctx, h.Redis, seenKey); seen {
			h.ack(w)
			return
		}
	}

	ps, os := orders.MapGatewayStatus(n.StatusCode)
	applied, err := h.Store.ApplyPaymentResult(ctx, n.OrderID, ps, os, n.PaymentID, n.PaidAmount())
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			log.Printf("ALERT payhere notify: order not found order=%s payment=%s", n.OrderID, n.PaymentID)
		} else {
			// A verified payment that we failed to record.
			log.Printf("ALERT payhere notify: persist failed order=%s payment=%s: %v", n.OrderID, n.PaymentID, err)
		}
		h.ack(w)
		return
	}

	if h.Redis != nil && n.PaymentID != "" {
		_ = h.Redis.Set(ctx, seenKey, "1", redisx.TTLNotifySeen).Err()
	}

	if !applied {
		log.Printf("payhere notify: skipped, payment state already terminal order=%s status=%s", n.OrderID, n.StatusCode)
		h.ack(w)
		return
	}

	h.cacheStatus(ctx, n.OrderID, ps, os)
	h.publishPaymentUpdated(ctx, n, ps, os)
	log.Printf("payhere notify processed: order=%s status=%s payment=%s", n.OrderID, ps, n.PaymentID)
	h.ack(w)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	h.fetchOrder(w, r, false)
}

// getPublicOrder serves the post-payment success page and only exposes paid
// orders.
func (h *OrdersHandler) getPublicOrder(w http.ResponseWriter, r *http.Request) {
	h.fetchOrder(w, r, true)
}

func (h *OrdersHandler) fetchOrder(w http.ResponseWriter, r *http.Request, publicOnly bool) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			fail(w, http.StatusNotFound, "Order not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Server error")
		return
	}
	if publicOnly && order.PaymentStatus != orders.PaymentPaid {
		fail(w, http.StatusForbidden, "Order not paid yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	order, err := h.Store.Get(ctx, id)
	if err != nil {
		fail(w, http.StatusNotFound, "Order not found")
		return
	}
	h.cacheStatus(ctx, order.ID, order.PaymentStatus, order.OrderStatus)
	writeJSON(w, http.StatusOK, statusBody(order.PaymentStatus, order.OrderStatus))
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.List(ctx, 100)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": list})
}

func (h *OrdersHandler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		OrderStatus orders.Status `json:"orderStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !orders.ValidStatus(req.OrderStatus) {
		fail(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.SetStatus(ctx, id, req.OrderStatus); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			fail(w, http.StatusNotFound, "Order not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	order, err := h.Store.Get(ctx, id)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to update order")
		return
	}
	h.cacheStatus(ctx, order.ID, order.PaymentStatus, order.OrderStatus)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

// ---- helpers ----

func (h *OrdersHandler) ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func statusBody(ps orders.PaymentStatus, os orders.Status) map[string]any {
	return map[string]any{"paymentStatus": ps, "orderStatus": os}
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, ps orders.PaymentStatus, os orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(statusBody(ps, os))
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishCreated(o *orders.Order, traceID string) {
	if h.CreatedProducer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
	}
	ev.Payload = kafka.MustMarshal(orders.OrderCreatedPayload{
		OrderID:  o.ID,
		UserID:   o.UserID,
		Items:    toItemQtys(o.Items),
		Subtotal: o.Subtotal,
		Discount: o.Discount,
		Shipping: o.Shipping,
		Total:    o.Total,
	})
	h.CreatedProducer.Publish(orders.PartitionKey(o.ID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishPaymentUpdated(ctx context.Context, n payhere.Notification, ps orders.PaymentStatus, os orders.Status) {
	if h.PaymentProducer == nil {
		return
	}
	// Item quantities ride along so the fulfillment worker does not need to
	// re-query.
	var items []orders.ItemQty
	if o, err := h.Store.Get(ctx, n.OrderID); err == nil {
		items = toItemQtys(o.Items)
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventPaymentUpdated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: n.OrderID,
	}
	ev.Payload = kafka.MustMarshal(orders.PaymentUpdatedPayload{
		OrderID:          n.OrderID,
		PaymentStatus:    ps,
		OrderStatus:      os,
		PayherePaymentID: n.PaymentID,
		PaidAmount:       n.PaidAmount(),
		Items:            items,
	})
	h.PaymentProducer.Publish(orders.PartitionKey(n.OrderID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventPaymentUpdated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func toItemQtys(items []orders.Item) []orders.ItemQty {
	out := make([]orders.ItemQty, 0, len(items))
	for _, it := range items {
		out = append(out, orders.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	return out
}
