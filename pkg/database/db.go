package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table, one row per key per day
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	TotalSessions int    `gorm:"default:0" json:"total_sessions"`
	TotalStaff    int    `gorm:"default:0" json:"total_staff"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScheduleRun is the run log: one summary row per scheduling request
type ScheduleRun struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	KeyID              *uint     `gorm:"index" json:"key_id,omitempty"`
	Source             string    `gorm:"not null" json:"source"`
	Mode               string    `json:"mode"`
	SessionCount       int       `json:"session_count"`
	StaffCount         int       `json:"staff_count"`
	Assigned           int       `json:"assigned"`
	PartiallyAssigned  int       `json:"partially_assigned"`
	Unassigned         int       `json:"unassigned"`
	BackupCount        int       `json:"backup_count"`
	TargetHoursPerUnit float64   `json:"target_hours_per_unit"`
	TotalHoursNeeded   float64   `json:"total_hours_needed"`
	FairnessScore      float64   `json:"fairness_score"`
	DurationMillis     int64     `json:"duration_ms"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a random ID when none is set
func (r *ScheduleRun) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewScheduleRun summarises a finished run. staffCount is the input size,
// not the number of people who received work.
func NewScheduleRun(source string, mode models.SchedulingMode, staffCount int, result *models.AssignmentResult, took time.Duration) ScheduleRun {
	counts := result.Counts()
	return ScheduleRun{
		Source:             source,
		Mode:               string(mode),
		SessionCount:       len(result.Sessions),
		StaffCount:         staffCount,
		Assigned:           counts.Assigned,
		PartiallyAssigned:  counts.PartiallyAssigned,
		Unassigned:         counts.Unassigned,
		BackupCount:        len(result.Backups),
		TargetHoursPerUnit: result.TargetHoursPerUnit,
		TotalHoursNeeded:   result.TotalHoursNeeded,
		FairnessScore:      result.FairnessScore,
		DurationMillis:     took.Milliseconds(),
	}
}

// InitDB opens Postgres when DATABASE_URL is set, sqlite at DATA_PATH
// otherwise, and migrates the schema
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gormCfg := &gorm.Config{}
	if cfg.DatabaseURL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
		gormCfg.PrepareStmt = false
	} else {
		dialector = sqlite.Open(cfg.DataPath)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &ScheduleRun{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
