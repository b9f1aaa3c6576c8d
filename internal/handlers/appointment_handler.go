package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/makeup-scheduler/internal/calendar"
	"github.com/BruksfildServices01/makeup-scheduler/internal/dto"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/makeup-scheduler/internal/middleware"
	"github.com/BruksfildServices01/makeup-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book       *appointment.BookAppointment
	reschedule *appointment.RescheduleAppointment
	cancel     *appointment.CancelAppointment
	status     *appointment.UpdateAppointmentStatus
	queries    *appointment.Queries
	calendar   *calendar.Service
}

type AppointmentUseCases struct {
	Book       *appointment.BookAppointment
	Reschedule *appointment.RescheduleAppointment
	Cancel     *appointment.CancelAppointment
	Status     *appointment.UpdateAppointmentStatus
	Queries    *appointment.Queries
}

func NewAppointmentHandler(uc AppointmentUseCases, cal *calendar.Service) *AppointmentHandler {
	return &AppointmentHandler{
		book:       uc.Book,
		reschedule: uc.Reschedule,
		cancel:     uc.Cancel,
		status:     uc.Status,
		queries:    uc.Queries,
		calendar:   cal,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookAppointmentRequest struct {
	SlotID      uint   `json:"slotId" binding:"required"`
	ServiceID   uint   `json:"serviceId" binding:"required"`
	Location    string `json:"location" binding:"required,max=200"`
	Description string `json:"description" binding:"max=500"`
}

type RescheduleRequest struct {
	NewSlotID uint `json:"newSlotId" binding:"required"`
	ServiceID uint `json:"serviceId" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// COMMANDS
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req BookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), appointment.BookAppointmentInput{
		UserID:      middleware.UserID(c),
		SlotID:      req.SlotID,
		ServiceID:   req.ServiceID,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, dto.NewAppointmentResponse(ap))
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), appointment.RescheduleInput{
		AppointmentID: id,
		NewSlotID:     req.NewSlotID,
		ServiceID:     req.ServiceID,
		RequesterID:   middleware.UserID(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewAppointmentResponse(ap))
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ap, err := h.cancel.Execute(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewAppointmentResponse(ap))
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.status.Execute(c.Request.Context(), id, req.Status, middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewAppointmentResponse(ap))
}

// ======================================================
// QUERIES
// ======================================================

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	items, err := h.queries.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewAppointmentList(items))
}

func (h *AppointmentHandler) ListAll(c *gin.Context) {
	items, err := h.queries.ListAll(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewAppointmentList(items))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ap, err := h.queries.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewAppointmentResponse(ap))
}

// ======================================================
// CALENDAR
// ======================================================

func (h *AppointmentHandler) SyncToCalendar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.calendar.SyncAppointment(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, res)
}

func (h *AppointmentHandler) SyncAllToCalendar(c *gin.Context) {
	res, err := h.calendar.SyncAll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, res)
}
