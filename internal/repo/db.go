package repo

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"Elegora/internal/model"
)

// InitDB открывает БД dev-леджера и применяет миграции моделей.
// DSN вида postgres://... или host=... — Postgres, иначе путь к файлу SQLite (modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	if isPostgresDSN(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, cfg)
		if err == nil {
			// SQLite допускает одного писателя: майнер и хендлеры идут через одно соединение
			if sqlDB, derr := db.DB(); derr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Item{}, &model.Tx{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
