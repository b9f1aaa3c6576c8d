package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/makeup-scheduler/internal/dto"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type ServiceCatalog interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	CreateService(ctx context.Context, svc *models.Service) error
	SaveService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id uint) error
}

type ServiceHandler struct {
	catalog ServiceCatalog
}

func NewServiceHandler(catalog ServiceCatalog) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// --------- Requests ---------

type ServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=500"`
	DurationMin int     `json:"durationMin" binding:"required,min=1"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}

func (r ServiceRequest) apply(svc *models.Service) {
	svc.Name = strings.TrimSpace(r.Name)
	svc.Description = strings.TrimSpace(r.Description)
	svc.DurationMin = r.DurationMin
	svc.Price = r.Price
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	items, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	out := make([]dto.ServiceResponse, 0, len(items))
	for i := range items {
		if query != "" && !strings.Contains(strings.ToLower(items[i].Name), query) {
			continue
		}
		out = append(out, dto.NewServiceResponse(&items[i]))
	}
	httpresp.OK(c, out)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	svc, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewServiceResponse(svc))
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	var svc models.Service
	req.apply(&svc)
	if err := h.catalog.CreateService(c.Request.Context(), &svc); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, dto.NewServiceResponse(&svc))
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req ServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	req.apply(svc)

	if err := h.catalog.SaveService(c.Request.Context(), svc); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, dto.NewServiceResponse(svc))
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteService(c.Request.Context(), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.NoContent(c)
}
