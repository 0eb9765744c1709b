package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

func TestInitDBSqlite(t *testing.T) {
	cfg := &config.Config{DataPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	for _, table := range []any{&APIKey{}, &APIUsage{}, &MasterUser{}, &ScheduleRun{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestScheduleRunPersists(t *testing.T) {
	db, err := InitDB(&config.Config{DataPath: filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)

	result := &models.AssignmentResult{
		Sessions: []models.SessionAssignment{
			{Status: models.StatusAssigned},
			{Status: models.StatusUnassigned},
		},
		Backups:            []models.BackupAssignment{{Staff: "Amy"}},
		TargetHoursPerUnit: 4,
		TotalHoursNeeded:   6,
		FairnessScore:      88,
	}
	run := NewScheduleRun("json", models.ModeBreak, 3, result, 1500*time.Millisecond)
	require.NoError(t, db.Create(&run).Error)
	assert.NotEqual(t, uuid.Nil, run.ID)

	var stored ScheduleRun
	require.NoError(t, db.First(&stored, "id = ?", run.ID).Error)
	assert.Equal(t, "json", stored.Source)
	assert.Equal(t, "Break", stored.Mode)
	assert.Equal(t, 2, stored.SessionCount)
	assert.Equal(t, 3, stored.StaffCount)
	assert.Equal(t, 1, stored.Assigned)
	assert.Equal(t, 1, stored.Unassigned)
	assert.Equal(t, 1, stored.BackupCount)
	assert.Equal(t, int64(1500), stored.DurationMillis)
	assert.InDelta(t, 88.0, stored.FairnessScore, 1e-9)
}
