package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/backend/backendtest"
)

func executeCommand(t *testing.T, srv *backendtest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POSADMIN_BACKEND_URL", srv.URL)
	t.Setenv("POSADMIN_BACKEND_REQUESTS_PER_SECOND", "0")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestUsersListJSON(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	srv.SeedUser("Ana Cruz", "ana@example.com", "ana", "Supervisor", "admin")
	srv.SeedUser("Ben Ramos", "ben@example.com", "ben", "Clerk", "staff")

	out, err := executeCommand(t, srv, "users", "list", "--output-format", "json", "--filter", "clerk", "--page-size", "25")
	require.NoError(t, err)

	var doc struct {
		Total   int              `json:"total"`
		Overall int              `json:"overall"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.Total)
	assert.Equal(t, 2, doc.Overall)
	assert.Equal(t, "ben", doc.Records[0]["username"])
}

func TestUsersListRejectsBadPageSize(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	_, err := executeCommand(t, srv, "users", "list", "--page-size", "13", "--filter", "")
	require.Error(t, err)
	assert.Zero(t, srv.Hits("/get_users"))
}

func TestUsersGetNotFound(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	_, err := executeCommand(t, srv, "users", "get", "42")
	require.ErrorIs(t, err, backend.ErrNotFound)
}

func TestStaffCreateWritesFile(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cashier.csv")
	_, err := executeCommand(t, srv, "staff", "create", "cashier",
		"--name", "Rey", "--last-name", "Dizon", "--username", "rey", "--passcode", "2222",
		"--output-format", "csv", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dizon")
	assert.Equal(t, 1, srv.Hits("/create_cashier"))
}

func TestStaffListUnknownKind(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	_, err := executeCommand(t, srv, "staff", "list", "owner")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	SetVersionInfo("1.2.3", "abc123", "2024-11-05")
	out, err := executeCommand(t, srv, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "posadmin 1.2.3\n")
}

func TestParseID(t *testing.T) {
	id, err := parseID("17")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, bad := range []string{"0", "-3", "abc"} {
		_, err := parseID(bad)
		require.Error(t, err, bad)
	}
}
