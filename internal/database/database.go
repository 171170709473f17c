package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sessionsSchema is the table layout expected by scs/sqlite3store.
const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// Database holds the SQLite handle backing the session store.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (or creates) the SQLite file and prepares the sessions table.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec(sessionsSchema).Error; err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	log.Printf("Session database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// Ping checks the connection.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CountSessions returns the number of stored sessions, expired ones included.
func (d *Database) CountSessions() (int64, error) {
	var count int64
	err := d.DB.Table("sessions").Count(&count).Error
	return count, err
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
