package db

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/makeup-scheduler/internal/config"
	"github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.AvailabilitySlot{},
		&models.Appointment{},
		&models.CalendarToken{},
		&models.CalendarEvent{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// Superseded by idx_appointments_slot_holder, which also covers COMPLETED.
	if err := db.Exec(`DROP INDEX IF EXISTS idx_appointments_live_slot`).Error; err != nil {
		return err
	}

	// At most one appointment may hold a slot.
	return db.Exec(fmt.Sprintf(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot_holder
        ON appointments (slot_id)
        WHERE slot_id IS NOT NULL AND status <> '%s'
    `, appointment.SlotFreeingStatus)).Error
}
