package database

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavshah/dutyboard-api-go/internal/config"
	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	Revoked    bool       `gorm:"default:false" json:"revoked"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table: one row per key and day
type APIUsage struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	KeyID          uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date           string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount   int    `gorm:"default:0" json:"request_count"`
	TotalRecords   int    `gorm:"default:0" json:"total_records"`
	TotalEmployees int    `gorm:"default:0" json:"total_employees"`
}

// Operator represents the operators table (dashboard administrators)
type Operator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageDateLayout is the day format of APIUsage.Date
const UsageDateLayout = "2006-01-02"

// Open picks Postgres when a DSN is configured and SQLite otherwise
func Open(cfg *config.AppConfig) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	return gorm.Open(sqlite.Open(cfg.DataPath), &gorm.Config{})
}

// InitDB connects with jittered retries and migrates the schema
func InitDB(ctx context.Context, cfg *config.AppConfig) (*gorm.DB, error) {
	attempts := cfg.DBConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	var db *gorm.DB
	err := retry.Do(
		func() error {
			var openErr error
			db, openErr = Open(cfg)
			return openErr
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("Database connection failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &Operator{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// RecordUsage adds one request to a key's usage row for day using an upsert
// (supported by both Postgres and SQLite)
func RecordUsage(db *gorm.DB, keyID uint, day time.Time, records, employees int) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":   gorm.Expr("request_count + ?", 1),
			"total_records":   gorm.Expr("total_records + ?", records),
			"total_employees": gorm.Expr("total_employees + ?", employees),
		}),
	}).Create(&APIUsage{
		KeyID:          keyID,
		Date:           day.Format(UsageDateLayout),
		RequestCount:   1,
		TotalRecords:   records,
		TotalEmployees: employees,
	}).Error
}

// RequestsOn returns how many requests a key made on day
func RequestsOn(db *gorm.DB, keyID uint, day time.Time) (int, error) {
	var usage APIUsage
	err := db.Where("key_id = ? AND date = ?", keyID, day.Format(UsageDateLayout)).
		Limit(1).Find(&usage).Error
	if err != nil {
		return 0, err
	}
	return usage.RequestCount, nil
}

// UsageHistory returns the most recent usage rows of a key
func UsageHistory(db *gorm.DB, keyID uint, limit int) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(limit).Find(&usage).Error
	return usage, err
}

// UsageTotals sums a usage history
type UsageTotals struct {
	Requests  int64 `json:"requests"`
	Records   int64 `json:"records"`
	Employees int64 `json:"employees"`
	Days      int   `json:"days"`
}

// SumUsage adds up request, record and employee counts over usage rows
func SumUsage(usage []APIUsage) UsageTotals {
	totals := UsageTotals{Days: len(usage)}
	for _, u := range usage {
		totals.Requests += int64(u.RequestCount)
		totals.Records += int64(u.TotalRecords)
		totals.Employees += int64(u.TotalEmployees)
	}
	return totals
}
