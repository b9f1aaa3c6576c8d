package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/dto"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/makeup-scheduler/internal/middleware"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
	"github.com/BruksfildServices01/makeup-scheduler/internal/usecase/availability"
)

type AvailabilityHandler struct {
	registry *availability.Registry
}

func NewAvailabilityHandler(registry *availability.Registry) *AvailabilityHandler {
	return &AvailabilityHandler{registry: registry}
}

// SlotRequest carries times as RFC3339 or local "2006-01-02T15:04:05".
type SlotRequest struct {
	ServiceID uint   `json:"serviceId" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

func (r SlotRequest) input(c *gin.Context) (availability.SlotInput, bool) {
	start, err := timezone.ParseDateTime(r.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_start_time", "Invalid startTime.")
		return availability.SlotInput{}, false
	}
	end, err := timezone.ParseDateTime(r.EndTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_end_time", "Invalid endTime.")
		return availability.SlotInput{}, false
	}
	return availability.SlotInput{ServiceID: r.ServiceID, StartTime: start, EndTime: end}, true
}

func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req SlotRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	slot, err := h.registry.CreateSlot(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, dto.NewSlotResponse(slot))
}

func (h *AvailabilityHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "slotId")
	if !ok {
		return
	}
	var req SlotRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	slot, err := h.registry.UpdateSlot(c.Request.Context(), id, in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewSlotResponse(slot))
}

// ListAvailable serves GET /availability?serviceId=&from=&to=.
func (h *AvailabilityHandler) ListAvailable(c *gin.Context) {
	var w domain.Window

	if s := c.Query("serviceId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_id", "Invalid serviceId.")
			return
		}
		w.ServiceID = uint(id)
	}

	var ok bool
	if w.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if w.To, ok = queryTime(c, "to"); !ok {
		return
	}

	slots, err := h.registry.ListAvailable(c.Request.Context(), w)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewSlotList(slots))
}

func (h *AvailabilityHandler) ListAll(c *gin.Context) {
	slots, err := h.registry.ListSlots(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewSlotList(slots))
}

func (h *AvailabilityHandler) ListByService(c *gin.Context) {
	id, ok := pathID(c, "serviceId")
	if !ok {
		return
	}
	slots, err := h.registry.ListSlotsByService(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewSlotList(slots))
}

func (h *AvailabilityHandler) Check(c *gin.Context) {
	id, ok := pathID(c, "slotId")
	if !ok {
		return
	}
	available, err := h.registry.IsSlotAvailable(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, available)
}

func (h *AvailabilityHandler) MarkBooked(c *gin.Context) {
	id, ok := pathID(c, "slotId")
	if !ok {
		return
	}
	if err := h.registry.MarkBooked(c.Request.Context(), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.NoContent(c)
}

// Release frees the slot and cancels the appointment still holding it.
func (h *AvailabilityHandler) Release(c *gin.Context) {
	id, ok := pathID(c, "slotId")
	if !ok {
		return
	}
	if err := h.registry.ReleaseSlot(c.Request.Context(), middleware.UserID(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.NoContent(c)
}

func (h *AvailabilityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "slotId")
	if !ok {
		return
	}
	if err := h.registry.DeleteSlot(c.Request.Context(), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.NoContent(c)
}

func queryTime(c *gin.Context, name string) (time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		return time.Time{}, true
	}
	t, err := timezone.ParseDateTime(s)
	if err != nil {
		if t, err = timezone.ParseDate(s); err != nil {
			httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
			return time.Time{}, false
		}
	}
	return t, true
}
