package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/makeup-scheduler/internal/calendar"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/makeup-scheduler/internal/middleware"
)

type CalendarHandler struct {
	service *calendar.Service
}

func NewCalendarHandler(service *calendar.Service) *CalendarHandler {
	return &CalendarHandler{service: service}
}

type CalendarCallbackRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

type authURLResponse struct {
	AuthURL string `json:"authUrl"`
}

func (h *CalendarHandler) AuthURL(c *gin.Context) {
	url, err := h.service.AuthURL(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, authURLResponse{AuthURL: url})
}

func (h *CalendarHandler) Callback(c *gin.Context) {
	var req CalendarCallbackRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.service.Connect(c.Request.Context(), middleware.UserID(c), req.Code, req.State)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, status)
}

func (h *CalendarHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, status)
}

func (h *CalendarHandler) Disconnect(c *gin.Context) {
	if err := h.service.Disconnect(c.Request.Context(), middleware.UserID(c)); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, messageResponse{Message: "Disconnected from Google Calendar"})
}

func (h *CalendarHandler) Refresh(c *gin.Context) {
	status, err := h.service.Refresh(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, status)
}

func (h *CalendarHandler) SyncStatus(c *gin.Context) {
	id, ok := pathID(c, "appointmentId")
	if !ok {
		return
	}
	status, err := h.service.SyncStatus(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, status)
}
