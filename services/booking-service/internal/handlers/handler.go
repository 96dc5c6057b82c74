package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/booking"
)

type Handler struct {
	bookings *booking.Service
	logger   *slog.Logger
}

func New(bookings *booking.Service, logger *slog.Logger) *Handler {
	return &Handler{bookings: bookings, logger: logger}
}

// Routes holds the middleware applied per audience. Nil entries are skipped.
type Routes struct {
	Public []httpx.Middleware
	Admin  []httpx.Middleware
}

func (h *Handler) Register(mux *http.ServeMux, rt Routes) {
	public := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, rt.Public...))
	}
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Chain(fn, rt.Admin...))
	}

	public("GET /api/v1/public/services", h.ListServices)
	public("GET /api/v1/public/services/{id}", h.GetService)
	public("GET /api/v1/public/slots", h.Slots)
	public("POST /api/v1/public/appointments", h.CreateAppointment)
	public("GET /api/v1/public/business", h.GetBusinessConfig)

	admin("GET /api/v1/admin/stats", h.Stats)
	admin("GET /api/v1/admin/appointments", h.ListAppointments)
	admin("PATCH /api/v1/admin/appointments/{id}/status", h.UpdateAppointmentStatus)
	admin("GET /api/v1/admin/appointments/{id}/history", h.AppointmentHistory)
	admin("DELETE /api/v1/admin/appointments/{id}", h.DeleteAppointment)
	admin("GET /api/v1/admin/availability", h.GetAvailability)
	admin("PUT /api/v1/admin/availability", h.UpdateAvailability)
	admin("GET /api/v1/admin/business", h.GetBusinessConfig)
	admin("PUT /api/v1/admin/business", h.UpdateBusinessConfig)
	admin("GET /api/v1/admin/services", h.ListAllServices)
	admin("POST /api/v1/admin/services", h.CreateService)
	admin("PUT /api/v1/admin/services/{id}", h.UpdateService)
	admin("DELETE /api/v1/admin/services/{id}", h.DeactivateService)
}

// writeError maps booking errors to status codes. Unknown errors are logged and hidden.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *booking.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteFieldError(w, http.StatusBadRequest, ve.Field, ve.Error())
	case errors.Is(err, booking.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrOutsideWorkingHours):
		httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("request failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
