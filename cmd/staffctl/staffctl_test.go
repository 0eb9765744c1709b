package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/exam-staffing-api/pkg/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTemplateThenAssign(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "template", dir, "--from", "2025-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "templates written")

	outDir := filepath.Join(dir, "out")
	out, err = execute(t, "assign", filepath.Join(dir, "sessions.csv"), filepath.Join(dir, "staff.csv"), "-o", outDir, "--mode", "Break")
	require.NoError(t, err)
	assert.Contains(t, out, "sessions:")
	assert.Contains(t, out, "fairness:")

	for _, name := range []string{"assignments.csv", "totals.csv", "backups.csv", "staff_schedule.csv"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, []byte("\ufeff")), name)
	}

	pdfPath := filepath.Join(dir, "report.pdf")
	_, err = execute(t, "report", filepath.Join(dir, "sessions.csv"), filepath.Join(dir, "staff.csv"), pdfPath)
	require.NoError(t, err)
	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestAssignMissingFile(t *testing.T) {
	_, err := execute(t, "assign", "missing-sessions.csv", "missing-staff.csv")
	assert.Error(t, err)

	_, err = execute(t, "assign", "only-one.csv")
	assert.Error(t, err)
}

func TestKeygen(t *testing.T) {
	t.Setenv("API_MASTER_SECRET", "cli-secret")
	out, err := execute(t, "keygen", "school-a")
	require.NoError(t, err)
	assert.Contains(t, out, auth.GenerateHMACKey("cli-secret", "school-a"))

	t.Setenv("API_MASTER_SECRET", "")
	_, err = execute(t, "keygen", "school-a")
	assert.ErrorContains(t, err, "API_MASTER_SECRET")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	boom := errors.New("boom")
	assert.ErrorIs(t, writeFile(filepath.Join(dir, "bad.csv"), func(io.Writer) error { return boom }), boom)

	assert.Error(t, writeFile(filepath.Join(dir, "missing", "x.csv"), func(io.Writer) error { return nil }))

	closed := filepath.Join(dir, "closed.csv")
	assert.Error(t, writeFile(closed, func(w io.Writer) error {
		return w.(*os.File).Close()
	}))
}
