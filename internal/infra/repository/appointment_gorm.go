package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/BruksfildServices01/makeup-scheduler/internal/db"
	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) conn(ctx context.Context) *gorm.DB {
	return dbpkg.Conn(ctx, r.db)
}

func (r *AppointmentGormRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.conn(ctx).
		Preload("User").
		Preload("Service").
		Preload("Slot").
		Preload("Slot.Service")
}

// --------------------------------------------------
// User
// --------------------------------------------------

func (r *AppointmentGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := r.conn(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("user_not_found", "User not found.")
		}
		return nil, err
	}
	return &user, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.withAssociations(ctx).First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("appointment_not_found", "Appointment not found.")
		}
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return slotHeld(r.conn(ctx).Omit(clause.Associations).Create(ap).Error)
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return slotHeld(r.conn(ctx).Omit(clause.Associations).Save(ap).Error)
}

// slotHeld maps a violation of idx_appointments_slot_holder to a conflict.
func slotHeld(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSlotHeld
	}
	return err
}

func (r *AppointmentGormRepository) ListAppointmentsByUser(
	ctx context.Context,
	userID uint,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.withAssociations(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.withAssociations(ctx).
		Order("scheduled_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// ListAppointmentsOn returns appointments scheduled on the given calendar day.
func (r *AppointmentGormRepository) ListAppointmentsOn(
	ctx context.Context,
	day time.Time,
	status domain.Status,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.withAssociations(ctx).
		Where("scheduled_at = ? AND status = ?", day.Format("2006-01-02"), string(status)).
		Order("id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
