package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bist-cli/internal/logger"
	"bist-cli/internal/secrets"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.Options{Level: "ERROR"})
}

func testStore(t *testing.T) *secrets.Store {
	t.Helper()
	return secrets.NewStore(t.TempDir(), false, testLogger())
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *secrets.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := testStore(t)
	return NewClient(store, testLogger(), WithBaseURL(srv.URL)), store
}

func TestTranslateResponse(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantRaw    string
		wantStatus int
		wantMsg    string
	}{
		{name: "ok json", status: 200, body: `{"a":1}`, wantRaw: `{"a":1}`},
		{name: "ok empty body", status: 204, body: ""},
		{name: "ok whitespace body", status: 200, body: "  \n"},
		{name: "ok invalid json", status: 200, body: "<html>oops</html>", wantStatus: 0, wantMsg: "invalid response body"},
		{name: "error with message field", status: 401, body: `{"message":"bad credentials"}`, wantStatus: 401, wantMsg: "bad credentials"},
		{name: "error with error field", status: 400, body: `{"error":"missing symbol"}`, wantStatus: 400, wantMsg: "missing symbol"},
		{name: "error plain body", status: 502, body: "Bad Gateway", wantStatus: 502, wantMsg: "Bad Gateway"},
		{name: "error empty body", status: 503, body: "", wantStatus: 503, wantMsg: "HTTP 503"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := translateResponse(tc.status, []byte(tc.body))
			if tc.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.wantRaw, string(raw))
				return
			}
			require.Error(t, err)
			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tc.wantMsg, apiErr.Message)
		})
	}
}

func TestLoginInstallsAndPersistsTokens(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"accessToken":"acc-1","refreshToken":"ref-1","user":{"username":"demo"}}`)
	})
	client, store := newTestClient(t, handler)

	result, err := client.Login(context.Background(), "demo", "pw")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", result.Session.AccessToken)
	assert.True(t, client.IsAuthenticated())

	// Persisted before use: a fresh client over the same store resumes.
	access, ok := store.Get(secrets.AccessTokenName)
	require.True(t, ok)
	assert.Equal(t, "acc-1", access)

	resumed := NewClient(store, testLogger())
	assert.True(t, resumed.IsAuthenticated())
}

func TestLoginErrorLeavesSessionClean(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Invalid username or password"}`)
	})
	client, store := newTestClient(t, handler)

	_, err := client.Login(context.Background(), "demo", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, StatusOf(err))
	assert.False(t, client.IsAuthenticated())

	_, ok := store.Get(secrets.AccessTokenName)
	assert.False(t, ok)
}

func TestRefreshWithoutToken(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())

	_, err := client.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestRefreshUsesRefreshTokenAsBearer(t *testing.T) {
	var gotBearer string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			gotBearer = r.Header.Get("Authorization")
			io.WriteString(w, `{"accessToken":"acc-2"}`)
			return
		}
		io.WriteString(w, `{"accessToken":"acc-1","refreshToken":"ref-1"}`)
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Login(context.Background(), "demo", "pw")
	require.NoError(t, err)

	sess, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer ref-1", gotBearer)
	assert.Equal(t, "acc-2", sess.AccessToken)
	assert.Equal(t, "ref-1", sess.RefreshToken, "refresh token survives when the response omits it")
}

func TestLogoutClearsEverything(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/logout" {
			// Remote failure must not prevent the local clear.
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"accessToken":"acc-1","refreshToken":"ref-1"}`)
	})
	client, store := newTestClient(t, handler)

	_, err := client.Login(context.Background(), "demo", "pw")
	require.NoError(t, err)
	require.True(t, client.IsAuthenticated())

	client.Logout(context.Background())
	assert.False(t, client.IsAuthenticated())
	_, ok := store.Get(secrets.AccessTokenName)
	assert.False(t, ok)
	_, ok = store.Get(secrets.RefreshTokenName)
	assert.False(t, ok)
}

func TestAuthenticatedRequestsCarryBearer(t *testing.T) {
	var gotBearer string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/broker/account" {
			gotBearer = r.Header.Get("Authorization")
			io.WriteString(w, `{}`)
			return
		}
		io.WriteString(w, `{"accessToken":"acc-1"}`)
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Login(context.Background(), "demo", "pw")
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/api/v1/broker/account")
	require.NoError(t, err)
	assert.Equal(t, "Bearer acc-1", gotBearer)
}

func TestTestConnection(t *testing.T) {
	healthy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/actuator/health", r.URL.Path)
		io.WriteString(w, `{"status":"UP"}`)
	})
	client, _ := newTestClient(t, healthy)
	assert.True(t, client.TestConnection(context.Background()))

	down, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	assert.False(t, down.TestConnection(context.Background()))

	unreachable := NewClient(testStore(t), testLogger(), WithBaseURL("http://127.0.0.1:1"))
	assert.False(t, unreachable.TestConnection(context.Background()))
}
