package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/exam-staffing-api/pkg/auth"
	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/database"
	"github.com/arnavshah/exam-staffing-api/pkg/metrics"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

type testServer struct {
	h      *Handler
	router *gin.Engine
	key    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DataPath:        filepath.Join(t.TempDir(), "api.db"),
		APIMasterSecret: "test-secret",
		JWT:             config.JWTConfig{Secret: "jwt-secret", Expiration: time.Hour},
		Admin:           config.AdminConfig{Username: "admin", Password: "admin123"},
		Scheduling:      config.SchedulingConfig{Mode: "Mixed", DefaultStaffPerSession: 2, RestDays: []string{"Friday"}},
	}
	db, err := database.InitDB(cfg)
	require.NoError(t, err)

	svc := auth.New(db, cfg, nil, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, svc.EnsureAdminExists())

	h := &Handler{DB: db, Auth: svc, Config: cfg, Metrics: metrics.New()}
	return &testServer{h: h, router: NewRouter(h), key: svc.GenerateKey("school-a")}
}

func (s *testServer) do(method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	return s.do(method, path, token, body, "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func scheduleBody() gin.H {
	return gin.H{
		"sessions": []gin.H{{
			"id": "S1", "subject": "Math", "date": "2025-01-04",
			"start": "09:00", "end": "11:00", "required": 1,
			"building": "North", "period": "Morning", "role": "Invigilator",
		}},
		"staff": []gin.H{
			{"name": "Amy", "available_days": []string{"Saturday"}, "role": "Invigilator"},
			{"name": "Fay", "available_days": "Sat, Sun", "role": "Floor Supervisor"},
		},
	}
}

func TestRootAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Exam Staffing API", decode(t, w)["message"])

	w = s.do(http.MethodGet, "/metrics", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodPost, "/api/schedule", "", scheduleBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"])

	w = s.doJSON(http.MethodPost, "/api/schedule", "school-a.forged", scheduleBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_API_KEY", decode(t, w)["code"])
}

func TestScheduleJSON(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodPost, "/api/schedule", s.key, scheduleBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	var result models.AssignmentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, "S1", result.Sessions[0].Session.ID)
	assert.Equal(t, []string{"Amy"}, result.Sessions[0].Assigned)
	assert.Equal(t, models.StatusAssigned, result.Sessions[0].Status)
	assert.Equal(t, "F-1", result.Sessions[1].Session.ID)
	assert.Equal(t, []string{"Fay"}, result.Sessions[1].Assigned)

	var usage database.APIUsage
	require.NoError(t, s.h.DB.First(&usage).Error)
	assert.Equal(t, 1, usage.RequestCount)
	assert.Equal(t, 1, usage.TotalSessions)
	assert.Equal(t, 2, usage.TotalStaff)

	w = s.doJSON(http.MethodPost, "/api/schedule", s.key, scheduleBody())
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, s.h.DB.First(&usage).Error)
	assert.Equal(t, 2, usage.RequestCount)

	w = s.do(http.MethodGet, "/api/runs", s.key, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode(t, w)["runs"].([]any)
	require.Len(t, runs, 2)
	assert.Equal(t, "json", runs[0].(map[string]any)["source"])
	assert.EqualValues(t, 2, runs[0].(map[string]any)["session_count"])

	w = s.do(http.MethodGet, "/api/usage", s.key, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "school-a", body["key_name"])
	assert.EqualValues(t, 2, body["totals"].(map[string]any)["requests"])
}

func TestScheduleJSONValidation(t *testing.T) {
	s := newTestServer(t)

	body := scheduleBody()
	body["sessions"].([]gin.H)[0]["date"] = ""
	w := s.doJSON(http.MethodPost, "/api/schedule", s.key, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
	assert.Contains(t, out["error"], "date is required")

	w = s.do(http.MethodPost, "/api/schedule", s.key, []byte("{not json"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleJSONConfigOverride(t *testing.T) {
	s := newTestServer(t)

	body := scheduleBody()
	body["sessions"].([]gin.H)[0]["required"] = 0
	body["config"] = gin.H{"mode": "Break", "default_staff_per_session": 1}
	w := s.doJSON(http.MethodPost, "/api/schedule", s.key, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.AssignmentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Sessions[0].Session.Required)
	assert.Equal(t, models.StatusAssigned, result.Sessions[0].Status)

	var run database.ScheduleRun
	require.NoError(t, s.h.DB.First(&run).Error)
	assert.Equal(t, "Break", run.Mode)
}

func TestValidateInput(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodPost, "/api/validate", s.key, scheduleBody())
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["valid"])
	assert.EqualValues(t, 2, out["stats"].(map[string]any)["staff_count"])

	body := scheduleBody()
	body["staff"] = append(body["staff"].([]gin.H), gin.H{"name": "Amy", "available_days": []string{"Sunday"}})
	w = s.doJSON(http.MethodPost, "/api/validate", s.key, body)
	require.Equal(t, http.StatusOK, w.Code)
	out = decode(t, w)
	assert.Equal(t, false, out["valid"])
	assert.Equal(t, "duplicate staff name: Amy", out["error"])
}

func multipartBody(t *testing.T, files map[string]string, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestScheduleCSV(t *testing.T) {
	s := newTestServer(t)
	files := map[string]string{
		"sessions_file": "Subject,Building,Date,From,To,Required\nMath,North,2025-01-04,09:00,11:00,1\n",
		"staff_file":    "Name,Available Days,Role\nAmy,Saturday,Invigilator\nBen,Saturday,Invigilator\nFay,Saturday,Floor Supervisor\n",
	}
	body, contentType := multipartBody(t, files, map[string]string{"mode": "Consecutive"})

	w := s.do(http.MethodPost, "/api/schedule/csv", s.key, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)

	assert.True(t, strings.HasPrefix(out["csv"].(string), "Session ID,Subject"))
	assert.Contains(t, out["csv"], "Amy")
	assert.Contains(t, out["totals_csv"], "Fay")
	assert.Contains(t, out["backups_csv"], "Ben")
	assert.Contains(t, out["staff_schedule_csv"], "Primary")
	assert.EqualValues(t, 2, out["counts"].(map[string]any)["assigned"])

	var run database.ScheduleRun
	require.NoError(t, s.h.DB.First(&run).Error)
	assert.Equal(t, "csv", run.Source)
	assert.Equal(t, "Consecutive", run.Mode)

	delete(files, "staff_file")
	body, contentType = multipartBody(t, files, nil)
	w = s.do(http.MethodPost, "/api/schedule/csv", s.key, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	missing := decode(t, w)
	assert.Contains(t, missing["error"], "staff_file is required")
	assert.Equal(t, "UNREADABLE_UPLOAD", missing["code"])

	files["staff_file"] = "Name\nAmy\n"
	body, contentType = multipartBody(t, files, nil)
	w = s.do(http.MethodPost, "/api/schedule/csv", s.key, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "missing required columns")
}

func TestSchedulePDF(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodPost, "/api/schedule/pdf?title=Finals", s.key, scheduleBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w)["code"])

	w = s.doJSON(http.MethodGet, "/admin/keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.doJSON(http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["access_token"].(string)

	w = s.doJSON(http.MethodPost, "/admin/keys", token, gin.H{"name": "school-b"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)
	key := created["key"].(string)
	id := int(created["id"].(float64))
	path := "/admin/keys/" + strconv.Itoa(id)

	w = s.do(http.MethodGet, "/api/usage", key, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "school-b", decode(t, w)["key_name"])

	w = s.doJSON(http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	keys := decode(t, w)["keys"].([]any)
	require.Len(t, keys, 1)
	first := keys[0].(map[string]any)
	assert.Nil(t, first["key"])
	assert.Equal(t, "sch..."+key[len(key)-4:], first["key_preview"])

	w = s.doJSON(http.MethodPut, path, token, gin.H{"rate_limit": 5})
	assert.Equal(t, http.StatusOK, w.Code)
	var stored database.APIKey
	require.NoError(t, s.h.DB.First(&stored, id).Error)
	assert.Equal(t, 5, stored.RateLimit)

	w = s.doJSON(http.MethodPut, path, token, gin.H{"rate_limit": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodGet, "/admin/usage/"+strconv.Itoa(id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["usage"])

	w = s.doJSON(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.doJSON(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

