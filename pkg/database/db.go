package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	KeyID          uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date           string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount   int    `gorm:"default:0" json:"request_count"`
	TotalShifts    int    `gorm:"default:0" json:"total_shifts"`
	TotalEmployees int    `gorm:"default:0" json:"total_employees"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// SolveRecord is one row of solve history: which encoding ran, how it
// ended and how expensive it was.
type SolveRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	JobID        string    `gorm:"index;not null" json:"job_id"`
	KeyID        uint      `gorm:"index" json:"key_id"`
	Encoding     string    `gorm:"not null" json:"encoding"`
	NumEmployees int       `json:"num_employees"`
	NumShifts    int       `json:"num_shifts"`
	Feasible     bool      `json:"feasible"`
	Violations   int       `json:"violations"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB initializes the database connection and migrates the schema.
// DATABASE_URL selects postgres; otherwise a local sqlite file is used.
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "scheduling.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &SolveRecord{})

	return db
}
