package handlers

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/booking"
)

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.bookings.ListServices(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, services)
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.bookings.GetService(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	if date == "" {
		httpx.WriteFieldError(w, http.StatusBadRequest, "date", "date is required")
		return
	}
	if serviceID == "" {
		httpx.WriteFieldError(w, http.StatusBadRequest, "service_id", "service_id is required")
		return
	}

	slots, err := h.bookings.GetAvailableSlots(r.Context(), date, serviceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}

type createAppointmentRequest struct {
	ServiceID   string `json:"service_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.bookings.CreateAppointment(r.Context(), booking.CreateAppointmentInput{
		ServiceID:   req.ServiceID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Date:        strings.TrimSpace(req.Date),
		StartTime:   strings.TrimSpace(req.StartTime),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, appt)
}

func (h *Handler) GetBusinessConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.bookings.GetBusinessConfig(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cfg)
}
