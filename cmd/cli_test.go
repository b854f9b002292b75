package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solvectl/internal/domain"
)

// stubServer serves the endpoints a happy-path session needs; individual
// tests override handlers for failure cases.
func stubServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func happyMux(t *testing.T) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("password") != "hunter22" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "LOGIN_BAD_CREDENTIALS"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123", "token_type": "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "8b4c8e8a-0000-0000-0000-000000000001",
			"email":          "solver@example.com",
			"balance":        3.25,
			"api_key_prefix": "sk_live_...abcd",
			"is_active":      true,
			"is_verified":    true,
			"created_at":     "2026-01-15T09:30:00.123456",
		})
	})

	return mux
}

func executeCLI(t *testing.T, serverURL string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("SOLVECTL_API_BASE_URL", serverURL)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func setTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLIVersion(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, happyMux(t))

	stdout, _, err := executeCLI(t, server.URL, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestCLILoginPersistsSession(t *testing.T) {
	home := setTestHome(t)
	server := stubServer(t, happyMux(t))

	stdout, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as solver@example.com")

	record, err := os.ReadFile(filepath.Join(home, ".solvectl", "session.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(record), "tok-123")
}

func TestCLILoginBadCredentials(t *testing.T) {
	home := setTestHome(t)
	server := stubServer(t, happyMux(t))

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "nope")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(home, ".solvectl", "session.toml"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestCLILoginRejectsMalformedEmail(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, http.NewServeMux())

	_, _, err := executeCLI(t, server.URL, "login", "--email", "not-an-email", "--password", "hunter22")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "email")
}

func TestCLIWhoamiRequiresSession(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, happyMux(t))

	_, _, err := executeCLI(t, server.URL, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLIWhoamiAfterLogin(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, happyMux(t))

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, server.URL, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "solver@example.com")
	assert.Contains(t, stdout, "$3.2500")
	assert.Contains(t, stdout, "sk_live_...abcd")
}

func TestCLIStaleSessionCollapses(t *testing.T) {
	home := setTestHome(t)
	server := stubServer(t, happyMux(t))

	sessionPath := filepath.Join(home, ".solvectl", "session.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(sessionPath), 0o700))
	require.NoError(t, os.WriteFile(sessionPath, []byte("version = 1\ntoken = \"tok-stale\"\n"), 0o600))

	_, _, err := executeCLI(t, server.URL, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)

	// The stale record is gone; the next start is anonymous.
	_, statErr := os.Stat(sessionPath)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestCLILogout(t *testing.T) {
	home := setTestHome(t)
	server := stubServer(t, happyMux(t))

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, server.URL, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out")

	_, statErr := os.Stat(filepath.Join(home, ".solvectl", "session.toml"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestCLITasksList(t *testing.T) {
	setTestHome(t)
	mux := happyMux(t)
	mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":         "3f1c9a00-0000-0000-0000-000000000001",
				"type":       "RecaptchaV2Task",
				"status":     "ready",
				"cost":       0.002,
				"created_at": "2026-08-29T10:00:00.500000",
			},
		})
	})
	server := stubServer(t, mux)

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, server.URL, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3f1c9a00")
	assert.Contains(t, stdout, "ready")
}

func TestCLITasksGetRejectsMalformedID(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, happyMux(t))

	_, _, err := executeCLI(t, server.URL, "tasks", "get", "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "task id")
}

func TestCLIDepositRejectsAmountBelowMinimum(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, http.NewServeMux())

	_, _, err := executeCLI(t, server.URL, "deposit", "--amount", "0.5")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "amount")
}

func TestCLIDepositPrintsCheckoutURL(t *testing.T) {
	setTestHome(t)
	mux := happyMux(t)
	mux.HandleFunc("/api/v1/deposit", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"checkout_url": "https://pay.example.com/cs_42"})
	})
	server := stubServer(t, mux)

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, server.URL, "deposit", "--amount", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://pay.example.com/cs_42")
}

func TestCLIAPIKeyRotate(t *testing.T) {
	setTestHome(t)
	mux := happyMux(t)
	mux.HandleFunc("/users/me/regenerate-api-key", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"api_key": "sk_live_feedface87654321"})
	})
	server := stubServer(t, mux)

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, server.URL, "apikey", "rotate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sk_live_feedface87654321")
	assert.Contains(t, stdout, "shown only once")
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Suspend", capitalize("suspend"))
	assert.Equal(t, "Activate", capitalize("activate"))
	assert.Equal(t, "Already", capitalize("Already"))
	assert.Equal(t, "9th", capitalize("9th"))
	assert.Empty(t, capitalize(""))
}

func TestCLIAdminRequiresRole(t *testing.T) {
	setTestHome(t)
	server := stubServer(t, happyMux(t))

	_, _, err := executeCLI(t, server.URL, "login", "--email", "solver@example.com", "--password", "hunter22")
	require.NoError(t, err)

	_, _, err = executeCLI(t, server.URL, "admin", "stats")
	require.Error(t, err)
}

func TestCLIAdminSuspendRefusesAdminTarget(t *testing.T) {
	setTestHome(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/login", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123", "token_type": "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "8b4c8e8a-0000-0000-0000-000000000001",
			"email":        "root@example.com",
			"is_active":    true,
			"is_superuser": true,
		})
	})
	patched := false
	mux.HandleFunc("/admin/users", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":           "8b4c8e8a-0000-0000-0000-000000000002",
				"email":        "other-admin@example.com",
				"is_active":    true,
				"is_superuser": true,
			},
		})
	})
	mux.HandleFunc("/admin/users/", func(w http.ResponseWriter, _ *http.Request) {
		patched = true
		w.WriteHeader(http.StatusForbidden)
	})
	server := stubServer(t, mux)

	_, _, err := executeCLI(t, server.URL, "login", "--email", "root@example.com", "--password", "hunter22")
	require.NoError(t, err)

	_, _, err = executeCLI(t, server.URL, "admin", "suspend", "8b4c8e8a-0000-0000-0000-000000000002")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "administrator account")
	assert.False(t, patched, "the refusal happens before any request")
}
