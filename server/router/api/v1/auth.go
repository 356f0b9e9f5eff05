package v1

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	sessionCookieName = "responder_session"
	stateCookieName   = "oauth_state"
	sessionIssuer     = "responder"
	sessionDuration   = 7 * 24 * time.Hour
)

// graphMeURL is overridable in tests.
var graphMeURL = "https://graph.microsoft.com/v1.0/me"

func (s *APIV1Service) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.Profile.GraphClientID,
		ClientSecret: s.Profile.GraphClientSecret,
		Endpoint:     microsoft.AzureADEndpoint(s.Profile.GraphTenantID),
		RedirectURL:  strings.TrimRight(s.Profile.InstanceURL, "/") + "/auth/callback",
		Scopes:       []string{"openid", "profile", "email", "User.Read"},
	}
}

// AuthLogin redirects the browser to the Azure authorization page. A
// random state lands in a short-lived cookie and is checked on
// callback.
func (s *APIV1Service) AuthLogin(c echo.Context) error {
	if !s.Profile.IsGraphConfigured() {
		return errorJSON(c, http.StatusServiceUnavailable, "UNAUTHORIZED", "OAuth login is not configured")
	}

	state := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, s.oauthConfig().AuthCodeURL(state))
}

// AuthCallback exchanges the authorization code, looks up the signed-in
// user, and sets the session cookie.
func (s *APIV1Service) AuthCallback(c echo.Context) error {
	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "state mismatch")
	}

	code := c.QueryParam("code")
	if code == "" {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "missing authorization code")
	}

	config := s.oauthConfig()
	token, err := config.Exchange(c.Request().Context(), code)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "code exchange failed: "+err.Error())
	}

	identity, err := fetchIdentity(config.Client(c.Request().Context(), token))
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "identity lookup failed: "+err.Error())
	}

	session, err := s.issueSessionToken(identity)
	if err != nil {
		return internalError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Clear the state cookie.
	c.SetCookie(&http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	return c.JSON(http.StatusOK, map[string]string{"user": identity})
}

// AuthLogout clears the session cookie.
func (s *APIV1Service) AuthLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "signed out"})
}

type graphIdentity struct {
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
}

func fetchIdentity(client *http.Client) (string, error) {
	resp, err := client.Get(graphMeURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var identity graphIdentity
	if err := json.Unmarshal(body, &identity); err != nil {
		return "", err
	}
	if identity.Mail != "" {
		return identity.Mail, nil
	}
	return identity.UserPrincipalName, nil
}

func (s *APIV1Service) issueSessionToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

func (s *APIV1Service) parseSessionToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	return claims.Subject, nil
}

// SessionMiddleware validates the session for /api/v1 routes. Dev and
// demo modes skip authentication so the API is usable without an IdP.
func (s *APIV1Service) SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.Profile.IsDev() {
				return next(c)
			}

			token := ""
			if cookie, err := c.Cookie(sessionCookieName); err == nil {
				token = cookie.Value
			}
			if token == "" {
				authHeader := c.Request().Header.Get("Authorization")
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
			if token == "" {
				return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			}

			subject, err := s.parseSessionToken(token)
			if err != nil {
				return errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session")
			}
			c.Set("user", subject)
			return next(c)
		}
	}
}
