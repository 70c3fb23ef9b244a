package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

const (
	fallbackShopName    = "Barbearia Sem Nome"
	fallbackShopAddress = "Endereço não informado"
)

// PublicHandler serves the storefront: shop page, catalog, slots, cart and checkout.
type PublicHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewPublicHandler(svc *booking.Service, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{svc: svc, logger: logger}
}

func (h *PublicHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/public/shop", h.Shop)
	mux.HandleFunc("/api/v1/public/services", h.Services)
	mux.HandleFunc("/api/v1/public/slots", h.Slots)
	mux.HandleFunc("/api/v1/public/availability", h.Availability)
	mux.HandleFunc("/api/v1/public/cart", h.Cart)
	mux.HandleFunc("/api/v1/public/cart/items", h.CartItems)
	mux.HandleFunc("/api/v1/public/cart/items/decrement", h.DecrementItem)
	mux.HandleFunc("/api/v1/public/checkout", h.Checkout)
}

func (h *PublicHandler) Shop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	shopID, ok := requireQuery(w, r, "shop_id")
	if !ok {
		return
	}
	shop, err := h.svc.Shop(r.Context(), shopID)
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, shopPage(shop))
}

func shopPage(s model.Shop) model.Shop {
	if strings.TrimSpace(s.Name) == "" {
		s.Name = fallbackShopName
	}
	if strings.TrimSpace(s.Address) == "" {
		s.Address = fallbackShopAddress
	}
	if s.OpeningHours == nil {
		s.OpeningHours = map[string]model.DayHours{}
	}
	return s
}

func (h *PublicHandler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	shopID, ok := requireQuery(w, r, "shop_id")
	if !ok {
		return
	}
	list, err := h.svc.Services(r.Context(), shopID)
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []model.Service{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"services": list})
}

func (h *PublicHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	shopID, ok := requireQuery(w, r, "shop_id")
	if !ok {
		return
	}
	date, ok := requireQuery(w, r, "date")
	if !ok {
		return
	}
	slots, err := h.svc.Slots(r.Context(), shopID, date)
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	if slots == nil {
		slots = []availability.Slot{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}

func (h *PublicHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	shopID, ok := requireQuery(w, r, "shop_id")
	if !ok {
		return
	}
	date, tm := q.Get("date"), q.Get("time")
	free, err := h.svc.Availability(r.Context(), shopID, date, tm)
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"date": date, "time": tm, "available": free})
}

type checkoutRequest struct {
	CartID string `json:"cartId"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

func (h *PublicHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.CartID) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "cartId is required")
		return
	}
	receipt, err := h.svc.Checkout(r.Context(), booking.CheckoutRequest{
		CartID: strings.TrimSpace(req.CartID),
		Form: booking.Form{
			Name:  req.Name,
			Phone: strings.TrimSpace(req.Phone),
			Date:  strings.TrimSpace(req.Date),
			Time:  strings.TrimSpace(req.Time),
		},
	})
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	h.logger.Info("appointment booked",
		"request_id", httpx.RequestIDFromContext(r.Context()),
		"appointment_id", receipt.Appointment.ID,
		"shop_id", receipt.Appointment.ShopID,
	)
	httpx.WriteJSON(w, http.StatusCreated, receipt)
}

func requireQuery(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		httpx.WriteError(w, http.StatusBadRequest, key+" is required")
		return "", false
	}
	return v, true
}
