package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pantrylog/pantrylog/internal/model"
)

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req model.ResolvedPurchase
	if !decodeBody(w, r, &req) {
		return
	}
	if detail, ok := checkPurchase(req); !ok {
		respondBadRequest(w, detail)
		return
	}

	purchase, err := h.store.CreatePurchase(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, purchase)
}

func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}
	var req model.ResolvedPurchase
	if !decodeBody(w, r, &req) {
		return
	}
	if detail, ok := checkPurchase(req); !ok {
		respondBadRequest(w, detail)
		return
	}

	purchase, err := h.store.UpdatePurchase(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}
	purchase, err := h.store.GetPurchase(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := purchaseID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeletePurchase(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.store.ListPurchases(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	respondJSON(w, http.StatusOK, purchases)
}

func purchaseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(w, "invalid purchase id")
		return 0, false
	}
	return id, true
}

// checkPurchase enforces the wire-level invariants the storage layer
// assumes. Deeper draft validation belongs to the composition core.
func checkPurchase(purchase model.ResolvedPurchase) (string, bool) {
	if purchase.UserID <= 0 {
		return "userId is required", false
	}
	if purchase.ShopID <= 0 {
		return "shopId is required", false
	}
	if len(purchase.Items) == 0 {
		return "a purchase needs at least one item", false
	}
	for _, item := range purchase.Items {
		if item.ProductID <= 0 {
			return "every item needs a productId", false
		}
		if !item.Quantity.IsPositive() {
			return "every item quantity must be positive", false
		}
		if !item.Price.IsPositive() {
			return "every item price must be positive", false
		}
	}
	if purchase.DeliveryCost.IsNegative() || purchase.Discount.IsNegative() {
		return "deliveryCost and discount cannot be negative", false
	}
	return "", true
}
