package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventhub/eventhub/internal/config"
	"github.com/eventhub/eventhub/internal/repository/dao"
)

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	return openPostgres(conf.DSN(), conf)
}

// OpenPostgresWithURL opens a connection from a postgres:// URL, as provided
// by most hosting platforms in DATABASE_URL. Pool settings still come from conf.
func OpenPostgresWithURL(url string, conf *config.PostgresConfig) (*gorm.DB, error) {
	return openPostgres(url, conf)
}

func openPostgres(dsn string, conf *config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}

// OpenSQLite opens a SQLite database with foreign keys on. A single
// connection is used: SQLite serialises writers anyway, and in-memory
// databases only live as long as their connection.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err = db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys -> %w", err)
	}

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}

func Open(conf *config.AppConfig, databaseURL string) (*gorm.DB, error) {
	if conf.DB.Driver == "sqlite" {
		return OpenSQLite(conf.DB.SQLitePath)
	}
	if databaseURL != "" {
		return OpenPostgresWithURL(databaseURL, conf.Postgres)
	}

	return OpenPostgres(conf.Postgres)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}
