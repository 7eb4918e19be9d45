package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/posadmin/internal/backend/backendtest"
)

func TestDoctorReachesBackend(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	out, _ := executeCommand(t, srv, "doctor")
	assert.Contains(t, out, "Checking backend... ✅ "+srv.URL)
	assert.Contains(t, out, "lockout after 3 attempts for 5m0s")
	assert.Equal(t, 1, srv.Hits("/get_users"))
}

func TestDoctorReportsUnreachableBackend(t *testing.T) {
	srv := backendtest.New()
	srv.Close()

	out, err := executeCommand(t, srv, "doctor")
	require.ErrorIs(t, err, errChecksFailed)
	assert.Contains(t, out, "unreachable")
}

func TestDoctorInitWritesValidConfig(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	out, err := executeCommand(t, srv, "doctor", "init", "--force")
	require.NoError(t, err)

	path := filepath.Clean(lastLine(out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "doctor init")
	assert.Contains(t, string(data), "max_attempts: 3")

	out, err = executeCommand(t, srv, "doctor", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config is valid")
}

func TestDoctorValidateRejectsBadFile(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  page_size: 7\n"), 0644))

	_, err := executeCommand(t, srv, "doctor", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.page_size 7")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
