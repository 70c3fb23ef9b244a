package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/booking"
)

const (
	msgShopClosed  = "A barbearia está fechada no momento!"
	msgSlotTaken   = "Este horário já está reservado. Por favor, escolha outro."
	msgInvalidForm = "Verifique os campos do formulário."
	msgUnavailable = "service unavailable, try again"
)

// writeBookingError maps booking outcomes to HTTP responses. Anything that is
// not a known outcome is a backend failure.
func writeBookingError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Debug("booking rejected", "request_id", httpx.RequestIDFromContext(r.Context()), "fields", verr.Fields)
		httpx.WriteFieldErrors(w, msgInvalidForm, verr.Fields)
	case errors.Is(err, booking.ErrShopNotFound),
		errors.Is(err, booking.ErrCartNotFound),
		errors.Is(err, booking.ErrServiceNotFound),
		errors.Is(err, booking.ErrAppointmentNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrShopClosed):
		httpx.WriteError(w, http.StatusUnprocessableEntity, msgShopClosed)
	case errors.Is(err, booking.ErrSlotTaken):
		httpx.WriteError(w, http.StatusConflict, msgSlotTaken)
	case errors.Is(err, booking.ErrInvalidStatus):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("booking backend failure",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusServiceUnavailable, msgUnavailable)
	}
}
