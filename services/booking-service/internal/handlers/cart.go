package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/cart"
	"github.com/shopspring/decimal"
)

type cartView struct {
	ID        string          `json:"id"`
	ShopID    string          `json:"shopId"`
	Lines     []cart.Line     `json:"lines"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func viewCart(s *cart.Session) cartView {
	return cartView{
		ID:        s.ID,
		ShopID:    s.ShopID,
		Lines:     s.Cart.Items(),
		Count:     s.Cart.Count(),
		Total:     s.Cart.Total(),
		UpdatedAt: s.UpdatedAt,
	}
}

type newCartRequest struct {
	ShopID string `json:"shopId"`
}

type cartItemRequest struct {
	CartID    string `json:"cartId"`
	ServiceID string `json:"serviceId"`
}

// Cart handles POST (open a cart) and GET (read one by cart_id).
func (h *PublicHandler) Cart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req newCartRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		shopID := strings.TrimSpace(req.ShopID)
		if shopID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "shopId is required")
			return
		}
		sess, err := h.svc.NewCart(r.Context(), shopID)
		if err != nil {
			writeBookingError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, viewCart(sess))
	case http.MethodGet:
		cartID, ok := requireQuery(w, r, "cart_id")
		if !ok {
			return
		}
		sess, err := h.svc.Cart(r.Context(), cartID)
		if err != nil {
			writeBookingError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, viewCart(sess))
	default:
		httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// CartItems handles POST (add one unit) and DELETE (remove the line).
func (h *PublicHandler) CartItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		req, ok := decodeCartItem(w, r)
		if !ok {
			return
		}
		sess, err := h.svc.AddItem(r.Context(), req.CartID, req.ServiceID)
		if err != nil {
			writeBookingError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, viewCart(sess))
	case http.MethodDelete:
		cartID, ok := requireQuery(w, r, "cart_id")
		if !ok {
			return
		}
		serviceID, ok := requireQuery(w, r, "service_id")
		if !ok {
			return
		}
		sess, err := h.svc.RemoveItem(r.Context(), cartID, serviceID)
		if err != nil {
			writeBookingError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, viewCart(sess))
	default:
		httpx.MethodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

func (h *PublicHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	req, ok := decodeCartItem(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.DecrementItem(r.Context(), req.CartID, req.ServiceID)
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, viewCart(sess))
}

func decodeCartItem(w http.ResponseWriter, r *http.Request) (cartItemRequest, bool) {
	var req cartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return req, false
	}
	req.CartID = strings.TrimSpace(req.CartID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	if req.CartID == "" || req.ServiceID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "cartId and serviceId are required")
		return req, false
	}
	return req, true
}
