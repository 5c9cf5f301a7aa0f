package db

import (
	"time"

	"github.com/rebertiger/student-chat/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection, retrying briefly so the server can
// start before the database container is ready.
func Connect(dsn string) (*gorm.DB, error) {
	var gdb *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		if err == nil {
			sqlDB, err2 := gdb.DB()
			if err2 == nil {
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetMaxOpenConns(20)
				sqlDB.SetConnMaxLifetime(time.Hour)
				return gdb, nil
			}
			err = err2
		}
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	return nil, err
}

// Migrate creates or updates every table the application touches. Foreign
// keys carry ON DELETE CASCADE so deleting a user removes their profile,
// rooms, participations, messages and subject links in one statement.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Subject{},
		&models.UserSubject{},
		&models.Room{},
		&models.RoomParticipant{},
		&models.Message{},
		&models.Report{},
		&models.RefreshToken{},
	)
}
