package db

import (
	"fmt"

	"agora/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs migrations. The handle is passed
// explicitly to every component that needs it; there is no package-level
// connection.
func Open(dsn string) (*gorm.DB, error) {
	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the store relies on to detect
	// duplicate votes.
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Vote{},
		&models.Comment{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return conn, nil
}
