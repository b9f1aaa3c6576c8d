package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

// ServiceGormRepository manages the service catalog.
type ServiceGormRepository struct {
	db *gorm.DB
}

func NewServiceGormRepository(db *gorm.DB) *ServiceGormRepository {
	return &ServiceGormRepository{db: db}
}

func (r *ServiceGormRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	var items []models.Service
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ServiceGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("service_not_found", "Service not found.")
		}
		return nil, err
	}
	return &svc, nil
}

func (r *ServiceGormRepository) CreateService(ctx context.Context, svc *models.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *ServiceGormRepository) SaveService(ctx context.Context, svc *models.Service) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

// DeleteService refuses while appointments still reference the service.
func (r *ServiceGormRepository) DeleteService(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Appointment{}).
			Where("service_id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.Conflict("service_in_use", "Service has appointments and cannot be deleted.")
		}

		res := tx.Delete(&models.Service{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.NotFoundErr("service_not_found", "Service not found.")
		}
		return nil
	})
}
