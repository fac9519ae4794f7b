package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func invokeAuth(t *testing.T, header string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := Auth(testSecret)(next)(c)
	return c, err
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", httpErr.Code)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err := invokeAuth(t, "")
	assertUnauthorized(t, err)
}

func TestAuth_MalformedHeader(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer"} {
		_, err := invokeAuth(t, header)
		assertUnauthorized(t, err)
	}
}

func TestAuth_InvalidSignature(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id":  "u1",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	_, err := invokeAuth(t, "Bearer "+token)
	assertUnauthorized(t, err)
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id":  "u1",
		"username": "alice",
		"exp":      time.Now().Add(-time.Minute).Unix(),
	})
	_, err := invokeAuth(t, "Bearer "+token)
	assertUnauthorized(t, err)
}

func TestAuth_ValidTokenInjectsIdentity(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id":  "u1",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	c, err := invokeAuth(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := c.Get("user_id"); got != "u1" {
		t.Fatalf("user_id = %v, want u1", got)
	}
	if got := c.Get("username"); got != "alice" {
		t.Fatalf("username = %v, want alice", got)
	}
}
