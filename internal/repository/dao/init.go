package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Event{},
		&Booking{},
		&Comment{},
		&Like{},
	)
}

// isUniqueViolation reports whether err is a unique constraint failure. The
// gorm translation covers connections opened with TranslateError; the pgconn
// check covers those opened without it. Each caller inserts into a table with
// a single unique constraint, so the constraint name is not needed.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
