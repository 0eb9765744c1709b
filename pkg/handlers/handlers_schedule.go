package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/exam-staffing-api/pkg/database"
	apperrors "github.com/arnavshah/exam-staffing-api/pkg/errors"
	"github.com/arnavshah/exam-staffing-api/pkg/export"
	"github.com/arnavshah/exam-staffing-api/pkg/ingest"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
	"github.com/arnavshah/exam-staffing-api/pkg/scheduler"
)

// Run sources recorded in metrics and the run log
const (
	SourceJSON = "json"
	SourceCSV  = "csv"
	SourcePDF  = "pdf"
)

// schedulerConfig merges request overrides into the server defaults
func (h *Handler) schedulerConfig(override *models.Config) models.Config {
	cfg := models.DefaultConfig()
	if h.Config != nil {
		cfg = h.Config.SchedulerConfig()
	}
	if override == nil {
		return cfg
	}
	if override.Mode != "" {
		cfg.Mode = override.Mode
	}
	if override.DefaultStaffPerSession > 0 {
		cfg.DefaultStaffPerSession = override.DefaultStaffPerSession
	}
	if len(override.RestDays) > 0 {
		cfg.RestDays = override.RestDays
	}
	return cfg
}

func validationError(problems []string) *apperrors.Error {
	return apperrors.ErrValidation.WithMessage(strings.Join(problems, "; "))
}

// bindInput decodes and checks a JSON schedule request. JSON sessions must
// carry a calendar date.
func (h *Handler) bindInput(c *gin.Context) (models.ScheduleInput, models.Config, bool) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperrors.Validation(err))
		return input, models.Config{}, false
	}

	problems := ingest.Validate(input)
	for i, s := range input.Sessions {
		if s.Date.IsZero() {
			problems = append(problems, fmt.Sprintf("sessions[%d]: date is required", i))
		}
	}
	if len(problems) > 0 {
		h.respondError(c, validationError(problems))
		return input, models.Config{}, false
	}

	cfg := h.schedulerConfig(input.Config)
	ingest.ApplyDefaults(input.Sessions, cfg)
	return input, cfg, true
}

// run executes one scheduling pass and records metrics, usage and the run log
func (h *Handler) run(c *gin.Context, source string, sessions []models.Session, staff []models.Staff, cfg models.Config) (*models.AssignmentResult, error) {
	start := time.Now()
	result, err := scheduler.Assign(sessions, staff, cfg, scheduler.WithLogger(h.log()))
	if err != nil {
		return nil, apperrors.Validation(err)
	}
	took := time.Since(start)

	h.Metrics.ObserveRun(source, result, took)
	h.RecordUsage(c, len(sessions), len(staff))

	entry := database.NewScheduleRun(source, cfg.Mode, len(staff), result, took)
	if key := currentKey(c); key != nil {
		entry.KeyID = &key.ID
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		h.log().Warn("could not record schedule run", zap.Error(err))
	}

	counts := result.Counts()
	h.log().Info("schedule run",
		zap.String("run_id", entry.ID.String()),
		zap.String("source", source),
		zap.Int("sessions", len(result.Sessions)),
		zap.Int("assigned", counts.Assigned),
		zap.Int("partially_assigned", counts.PartiallyAssigned),
		zap.Int("unassigned", counts.Unassigned),
		zap.Duration("took", took),
	)
	c.Header("X-Run-ID", entry.ID.String())
	return result, nil
}

// RecordUsage records API usage in the database using a single upsert
func (h *Handler) RecordUsage(c *gin.Context, sessionCount, staffCount int) {
	apiKey := currentKey(c)
	if apiKey == nil {
		return
	}

	today := time.Now().Format("2006-01-02")

	// OnConflict works for both Postgres and SQLite
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":  gorm.Expr("request_count + ?", 1),
			"total_sessions": gorm.Expr("total_sessions + ?", sessionCount),
			"total_staff":    gorm.Expr("total_staff + ?", staffCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:         apiKey.ID,
		Date:          today,
		RequestCount:  1,
		TotalSessions: sessionCount,
		TotalStaff:    staffCount,
	}).Error
	if err != nil {
		h.log().Warn("could not record usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
}

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	input, cfg, ok := h.bindInput(c)
	if !ok {
		return
	}

	result, err := h.run(c, SourceJSON, input.Sessions, input.Staff, cfg)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SchedulePDF runs a JSON request and returns the printable report
func (h *Handler) SchedulePDF(c *gin.Context) {
	input, cfg, ok := h.bindInput(c)
	if !ok {
		return
	}

	result, err := h.run(c, SourcePDF, input.Sessions, input.Staff, cfg)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pdf, err := export.PDFReport(result, c.Query("title"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="assignments.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func openUpload(c *gin.Context, field string) (multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.ErrUnreadableUpload.WithMessage(field + " is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(err, "failed to open "+field)
	}
	return f, nil
}

// ScheduleCSV handles CSV file uploads for scheduling. The optional form
// field "mode" overrides the scheduling mode.
func (h *Handler) ScheduleCSV(c *gin.Context) {
	override := &models.Config{}
	if mode := c.PostForm("mode"); mode != "" {
		override.Mode = models.ParseSchedulingMode(mode)
	}
	cfg := h.schedulerConfig(override)

	sessionsFile, err := openUpload(c, "sessions_file")
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer sessionsFile.Close()

	staffFile, err := openUpload(c, "staff_file")
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer staffFile.Close()

	sessions, err := ingest.ReadSessionsCSV(sessionsFile, cfg)
	if err != nil {
		h.respondError(c, apperrors.Validation(err))
		return
	}
	staff, err := ingest.ReadStaffCSV(staffFile)
	if err != nil {
		h.respondError(c, apperrors.Validation(err))
		return
	}
	if problems := ingest.Validate(models.ScheduleInput{Sessions: sessions, Staff: staff}); len(problems) > 0 {
		h.respondError(c, validationError(problems))
		return
	}

	result, err := h.run(c, SourceCSV, sessions, staff, cfg)
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := map[string]func(*models.AssignmentResult, ...export.CSVOption) ([]byte, error){
		"csv":                export.AssignmentsCSV,
		"totals_csv":         export.TotalsCSV,
		"backups_csv":        export.BackupsCSV,
		"staff_schedule_csv": export.StaffScheduleCSV,
	}
	body := gin.H{
		"counts":         result.Counts(),
		"fairness_score": result.FairnessScore,
		"warnings":       result.Warnings,
	}
	for name, render := range views {
		out, err := render(result)
		if err != nil {
			h.respondError(c, err)
			return
		}
		body[name] = string(out)
	}
	c.JSON(http.StatusOK, body)
}
