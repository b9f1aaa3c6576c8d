package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/makeup-scheduler/internal/calendar"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type CalendarGormRepository struct {
	db *gorm.DB
}

func NewCalendarGormRepository(db *gorm.DB) *CalendarGormRepository {
	return &CalendarGormRepository{db: db}
}

// --------------------------------------------------
// Tokens
// --------------------------------------------------

func (r *CalendarGormRepository) GetToken(
	ctx context.Context,
	userID uint,
	provider string,
) (*models.CalendarToken, error) {

	var tok models.CalendarToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// SaveToken upserts on (user_id, provider).
func (r *CalendarGormRepository) SaveToken(
	ctx context.Context,
	tok *models.CalendarToken,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "email", "updated_at"}),
		}).
		Create(tok).Error
}

func (r *CalendarGormRepository) DeleteToken(
	ctx context.Context,
	userID uint,
	provider string,
) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.CalendarToken{}).Error
}

func (r *CalendarGormRepository) ListTokensExpiringBefore(
	ctx context.Context,
	provider string,
	t time.Time,
) ([]models.CalendarToken, error) {

	var tokens []models.CalendarToken
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND expires_at < ?", provider, t).
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *CalendarGormRepository) DeleteTokensExpiredBefore(
	ctx context.Context,
	provider string,
	t time.Time,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Where("provider = ? AND expires_at < ?", provider, t).
		Delete(&models.CalendarToken{})
	return res.RowsAffected, res.Error
}

// --------------------------------------------------
// Events
// --------------------------------------------------

func (r *CalendarGormRepository) GetEvent(
	ctx context.Context,
	appointmentID uint,
	provider string,
) (*models.CalendarEvent, error) {

	var ev models.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND provider = ?", appointmentID, provider).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *CalendarGormRepository) SaveEvent(
	ctx context.Context,
	ev *models.CalendarEvent,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "appointment_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "external_event_id", "calendar_id", "synced", "updated_at"}),
		}).
		Create(ev).Error
}

func (r *CalendarGormRepository) DeleteEvent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CalendarEvent{}, id).Error
}

func (r *CalendarGormRepository) DeleteEventsForUser(
	ctx context.Context,
	userID uint,
	provider string,
) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.CalendarEvent{}).Error
}

var _ calendar.Store = (*CalendarGormRepository)(nil)
