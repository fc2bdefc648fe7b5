package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ceylonkart/storefront/internal/promo"
)

type PromoHandler struct {
	Store PromoStore
}

func (h *PromoHandler) Register(r *chi.Mux) {
	r.Get("/api/promo", h.listPromos)
	r.Post("/api/promo/create", h.createPromo)
	r.Post("/api/promo/apply", h.applyPromo)
	r.Delete("/api/promo/{id}", h.deletePromo)
}

type CreatePromoReq struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discountType"`
	DiscountValue float64    `json:"discountValue"`
	MinAmount     float64    `json:"minAmount"`
	MaxUses       *int       `json:"maxUses"`
	FirstTimeOnly bool       `json:"firstTimeOnly"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidTo       *time.Time `json:"validTo"`
	Active        *bool      `json:"active"`
}

type ApplyPromoReq struct {
	Code         string  `json:"code"`
	CartTotal    float64 `json:"cartTotal"`
	UserID       string  `json:"userId"`
	IsFirstOrder bool    `json:"isFirstOrder"`
}

func (h *PromoHandler) listPromos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	promos, err := h.Store.ListActive(ctx)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to fetch promos")
		return
	}
	if promos == nil {
		promos = []promo.Promo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "promos": promos})
}

func (h *PromoHandler) createPromo(w http.ResponseWriter, r *http.Request) {
	var req CreatePromoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if promo.Normalize(req.Code) == "" {
		fail(w, http.StatusBadRequest, "Promo code is required")
		return
	}
	if req.DiscountValue < 0 {
		fail(w, http.StatusBadRequest, "Discount value must not be negative")
		return
	}
	switch req.DiscountType {
	case "":
		req.DiscountType = promo.DiscountPercent
	case promo.DiscountPercent, promo.DiscountFixed:
	default:
		fail(w, http.StatusBadRequest, "Invalid discount type")
		return
	}

	p := &promo.Promo{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinAmount:     req.MinAmount,
		MaxUses:       req.MaxUses,
		FirstTimeOnly: req.FirstTimeOnly,
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
		Active:        true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Create(ctx, p); err != nil {
		if errors.Is(err, promo.ErrCodeExists) {
			fail(w, http.StatusConflict, "Promo code already exists")
			return
		}
		fail(w, http.StatusInternalServerError, "Failed to create promo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "promo": p})
}

func (h *PromoHandler) deletePromo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, promo.ErrNotFound) {
			fail(w, http.StatusNotFound, "Promo not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Promo deleted successfully"})
}

func (h *PromoHandler) applyPromo(w http.ResponseWriter, r *http.Request) {
	var req ApplyPromoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		fail(w, http.StatusBadRequest, "Promo code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.GetByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, promo.ErrNotFound) {
			fail(w, http.StatusNotFound, "Promo code not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Failed to apply promo")
		return
	}

	res, err := promo.Evaluate(p, req.CartTotal, req.IsFirstOrder, time.Now())
	if err != nil {
		fail(w, http.StatusBadRequest, rejectionMessage(err))
		return
	}

	// The eligibility pre-check above can race with other redemptions; the
	// conditional Redeem update is the authority on the usage cap.
	uses, err := h.Store.Redeem(ctx, p.ID)
	if err != nil {
		if errors.Is(err, promo.ErrUsageLimit) {
			fail(w, http.StatusConflict, "Promo usage limit reached")
			return
		}
		fail(w, http.StatusInternalServerError, "Failed to apply promo")
		return
	}
	p.Uses = uses

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"discountAmount": res.DiscountAmount,
		"newTotal":       res.NewTotal,
		"promo":          p,
	})
}

func rejectionMessage(err error) string {
	var minErr *promo.MinAmountError
	switch {
	case errors.Is(err, promo.ErrInactive):
		return "Promo code is not active"
	case errors.Is(err, promo.ErrNotStarted):
		return "Promo not yet active"
	case errors.Is(err, promo.ErrExpired):
		return "Promo expired"
	case errors.Is(err, promo.ErrUsageLimit):
		return "Promo usage limit reached"
	case errors.As(err, &minErr):
		return fmt.Sprintf("Minimum cart amount is Rs. %g", minErr.Min)
	case errors.Is(err, promo.ErrFirstTimeOnly):
		return "Promo valid for first time customers only"
	}
	return "Failed to apply promo"
}
