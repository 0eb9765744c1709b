package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REST_DAYS", "")
	t.Setenv("SCHEDULING_MODE", "")
	t.Setenv("DEFAULT_STAFF_PER_SESSION", "")

	cfg, err := Load()
	require.NoError(t, err)

	sc := cfg.SchedulerConfig()
	assert.Equal(t, models.ModeMixed, sc.Mode)
	assert.Equal(t, 2, sc.DefaultStaffPerSession)
	assert.Equal(t, models.Weekdays{time.Friday}, sc.RestDays)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("SCHEDULING_MODE", "break")
	t.Setenv("DEFAULT_STAFF_PER_SESSION", "3")
	t.Setenv("REST_DAYS", "Friday, Saturday, nonsense")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)

	sc := cfg.SchedulerConfig()
	assert.Equal(t, models.ModeBreak, sc.Mode)
	assert.Equal(t, 3, sc.DefaultStaffPerSession)
	assert.Equal(t, models.Weekdays{time.Friday, time.Saturday}, sc.RestDays)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
