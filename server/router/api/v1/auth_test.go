package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	service, _ := newTestService(t, "dev")

	token, err := service.issueSessionToken("alice@example.com")
	require.NoError(t, err)

	subject, err := service.parseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	// A token signed with another secret is rejected.
	other := &APIV1Service{Secret: "other-secret"}
	_, err = other.parseSessionToken(token)
	assert.Error(t, err)
}

func TestFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userPrincipalName": "alice@contoso.com", "mail": "alice@example.com"}`))
	}))
	defer srv.Close()

	original := graphMeURL
	graphMeURL = srv.URL
	defer func() { graphMeURL = original }()

	identity, err := fetchIdentity(srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity)
}

func TestAuthLoginRedirect(t *testing.T) {
	service, e := newTestService(t, "dev")
	service.Profile.GraphTenantID = "tenant-id"
	service.Profile.GraphClientID = "client-id"
	service.Profile.GraphClientSecret = "client-secret"
	service.Profile.GraphUserID = "user-id"

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "login.microsoftonline.com")
	assert.Contains(t, location, "client-id")

	cookies := rec.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == stateCookieName && cookie.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "state cookie must be set")
}

func TestAuthLoginUnconfigured(t *testing.T) {
	_, e := newTestService(t, "dev")

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthCallbackStateMismatch(t *testing.T) {
	_, e := newTestService(t, "dev")

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "different"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "state mismatch")
}

func TestAuthLogoutClearsCookie(t *testing.T) {
	_, e := newTestService(t, "dev")

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie must be expired")
}
