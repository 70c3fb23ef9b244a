package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

// ShopIDHeader carries the tenant resolved by the gateway from the owner's token.
const ShopIDHeader = "X-Shop-Id"

type AdminHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewAdminHandler(svc *booking.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/appointments", h.Appointments)
	mux.HandleFunc("/api/v1/appointments/status", h.SetStatus)
}

func shopFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	shopID := strings.TrimSpace(r.Header.Get(ShopIDHeader))
	if shopID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing shop context")
		return "", false
	}
	return shopID, true
}

// Appointments handles GET (filtered list) and DELETE (confirmed removal).
func (h *AdminHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		httpx.MethodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopFromRequest(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter, err := booking.ParseFilter(q.Get("status"), q.Get("date"), q.Get("q"))
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	list, err := h.svc.Appointments(r.Context(), shopID, filter)
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []model.Appointment{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"appointments": list})
}

func (h *AdminHandler) delete(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := requireQuery(w, r, "id")
	if !ok {
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		httpx.WriteError(w, http.StatusPreconditionRequired, "deletion requires confirm=true")
		return
	}
	if err := h.svc.DeleteAppointment(r.Context(), shopID, id); err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	h.logger.Info("appointment deleted",
		"request_id", httpx.RequestIDFromContext(r.Context()),
		"shop_id", shopID,
		"appointment_id", id,
	)
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	AppointmentID string `json:"appointmentId"`
	Status        string `json:"status"`
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	shopID, ok := shopFromRequest(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.AppointmentID) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "appointmentId is required")
		return
	}
	appt, err := h.svc.SetStatus(r.Context(), shopID, strings.TrimSpace(req.AppointmentID), strings.TrimSpace(req.Status))
	if err != nil {
		writeBookingError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appt)
}
