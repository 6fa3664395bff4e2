package server

import (
	"net/http"
	"strings"

	"github.com/pantrylog/pantrylog/internal/model"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondBadRequest(w, "user name is required")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondBadRequest(w, "user email is required")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

type createShopRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request) {
	var req createShopRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondBadRequest(w, "shop name is required")
		return
	}

	shop, err := h.store.CreateShop(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, shop)
}

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.store.ListShops(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if shops == nil {
		shops = []model.Shop{}
	}
	respondJSON(w, http.StatusOK, shops)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

// createCategory is get-or-create: posting an existing name returns the
// existing row. The composition core depends on this for retry safety.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondBadRequest(w, "category name is required")
		return
	}

	category, err := h.store.GetOrCreateCategory(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req model.ProductInput
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondBadRequest(w, "product name is required")
		return
	}
	if req.UnitType != "" && !req.UnitType.IsValid() {
		respondBadRequest(w, "unknown unit type "+string(req.UnitType))
		return
	}

	product, err := h.store.CreateProduct(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}
