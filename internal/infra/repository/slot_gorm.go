package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/BruksfildServices01/makeup-scheduler/internal/db"
	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type SlotGormRepository struct {
	db *gorm.DB
}

func NewSlotGormRepository(db *gorm.DB) *SlotGormRepository {
	return &SlotGormRepository{db: db}
}

func (r *SlotGormRepository) conn(ctx context.Context) *gorm.DB {
	return dbpkg.Conn(ctx, r.db)
}

func errSlotNotFound() error {
	return httperr.NotFoundErr("slot_not_found", "Availability slot not found.")
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *SlotGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.conn(ctx).First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("service_not_found", "Service not found.")
		}
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Slot
// --------------------------------------------------

func (r *SlotGormRepository) GetSlot(
	ctx context.Context,
	id uint,
) (*models.AvailabilitySlot, error) {

	var slot models.AvailabilitySlot
	if err := r.conn(ctx).Preload("Service").First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSlotNotFound()
		}
		return nil, err
	}
	return &slot, nil
}

func (r *SlotGormRepository) CreateSlot(
	ctx context.Context,
	slot *models.AvailabilitySlot,
) error {
	return r.conn(ctx).Omit(clause.Associations).Create(slot).Error
}

func (r *SlotGormRepository) UpdateSlot(
	ctx context.Context,
	slot *models.AvailabilitySlot,
) error {
	return r.conn(ctx).Omit(clause.Associations).Save(slot).Error
}

func (r *SlotGormRepository) DeleteSlot(
	ctx context.Context,
	id uint,
) error {
	res := r.conn(ctx).Delete(&models.AvailabilitySlot{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errSlotNotFound()
	}
	return nil
}

func (r *SlotGormRepository) FindOverlapping(
	ctx context.Context,
	adminID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) ([]models.AvailabilitySlot, error) {

	var slots []models.AvailabilitySlot
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"admin_id = ? AND start_time < ? AND end_time > ? AND id <> ?",
			adminID,
			end,
			start,
			excludeID,
		).
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// --------------------------------------------------
// Booking state
// --------------------------------------------------

func (r *SlotGormRepository) TryBook(
	ctx context.Context,
	id uint,
) (bool, error) {

	res := r.conn(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ? AND booked = ?", id, false).
		Update("booked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SlotGormRepository) Release(
	ctx context.Context,
	id uint,
) error {

	res := r.conn(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ?", id).
		Update("booked", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errSlotNotFound()
	}
	return nil
}

// ReleaseUnheld frees the slot only when no appointment holds it anymore.
// Callers update their own appointment first, inside the same transaction.
func (r *SlotGormRepository) ReleaseUnheld(
	ctx context.Context,
	id uint,
) (bool, error) {

	holders := r.db.
		Model(&models.Appointment{}).
		Select("1").
		Where("slot_id = ? AND status <> ?", id, string(domain.SlotFreeingStatus))

	res := r.conn(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ? AND NOT EXISTS (?)", id, holders).
		Update("booked", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SlotGormRepository) CancelSlotHolder(
	ctx context.Context,
	slotID uint,
	now time.Time,
) (uint, error) {

	var ap models.Appointment
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ? AND status <> ?", slotID, string(domain.SlotFreeingStatus)).
		First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := domain.CanReleaseHeldSlot(domain.Status(ap.Status)); err != nil {
		return 0, err
	}

	if err := r.conn(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", ap.ID).
		Updates(map[string]any{
			"status":       string(domain.StatusCancelled),
			"cancelled_at": now,
		}).Error; err != nil {
		return 0, err
	}
	return ap.ID, nil
}

// --------------------------------------------------
// Listings
// --------------------------------------------------

func (r *SlotGormRepository) ListAvailable(
	ctx context.Context,
	w availability.Window,
	now time.Time,
) ([]models.AvailabilitySlot, error) {

	q := r.conn(ctx).
		Preload("Service").
		Where("booked = ? AND start_time > ? AND start_time BETWEEN ? AND ?", false, now, w.From, w.To)
	if w.ServiceID != 0 {
		q = q.Where("service_id = ?", w.ServiceID)
	}

	var slots []models.AvailabilitySlot
	if err := q.Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SlotGormRepository) ListSlots(
	ctx context.Context,
) ([]models.AvailabilitySlot, error) {

	var slots []models.AvailabilitySlot
	if err := r.conn(ctx).
		Preload("Service").
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SlotGormRepository) ListSlotsByService(
	ctx context.Context,
	serviceID uint,
) ([]models.AvailabilitySlot, error) {

	var slots []models.AvailabilitySlot
	if err := r.conn(ctx).
		Preload("Service").
		Where("service_id = ?", serviceID).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

var _ availability.Repository = (*SlotGormRepository)(nil)
