package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/agendou/libs/httpx"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.bookings.ListAppointments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appts)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.bookings.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dashboard)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	appt, err := h.bookings.UpdateAppointmentStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appt)
}

func (h *Handler) AppointmentHistory(w http.ResponseWriter, r *http.Request) {
	changes, err := h.bookings.ListStatusHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, changes)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.DeleteAppointment(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	days, err := h.bookings.GetAvailability(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, days)
}

func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	var days []model.Availability
	if err := httpx.DecodeJSON(r, &days); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.bookings.UpdateAvailability(r.Context(), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) UpdateBusinessConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.BusinessConfig
	if err := httpx.DecodeJSON(r, &cfg); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.bookings.UpdateBusinessConfig(r.Context(), cfg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) ListAllServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.bookings.ListAllServices(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, services)
}

type serviceRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
	IsActive        *bool           `json:"is_active"`
}

func (req serviceRequest) input() booking.ServiceInput {
	return booking.ServiceInput{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        req.IsActive,
	}
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, err := h.bookings.CreateService(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, svc)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, err := h.bookings.UpdateService(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, svc)
}

// DeactivateService backs DELETE; the service is hidden, not removed.
func (h *Handler) DeactivateService(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.DeactivateService(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
