package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/makeup-scheduler/internal/dto"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/makeup-scheduler/internal/middleware"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/validators"
)

const notificationHistoryLimit = 50

type NotificationHistory interface {
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
}

type MeHandler struct {
	users         UserStore
	notifications NotificationHistory
}

func NewMeHandler(users UserStore, notifications NotificationHistory) *MeHandler {
	return &MeHandler{users: users, notifications: notifications}
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=50"`
	Surname  *string `json:"surname,omitempty" binding:"omitempty,max=50"`
	PhoneNum *string `json:"phoneNum,omitempty"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewUserResponse(user))
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Surname != nil {
		user.Surname = strings.TrimSpace(*req.Surname)
	}
	if req.PhoneNum != nil {
		if !validators.IsPhoneValid(*req.PhoneNum) {
			httperr.BadRequest(c, "invalid_phone", "Must be a valid phone number.")
			return
		}
		user.Phone = strings.TrimSpace(*req.PhoneNum)
	}

	if err := h.users.SaveUser(c.Request.Context(), user); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewUserResponse(user))
}

func (h *MeHandler) Notifications(c *gin.Context) {
	items, err := h.notifications.ListByUser(c.Request.Context(), middleware.UserID(c), notificationHistoryLimit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, items)
}
