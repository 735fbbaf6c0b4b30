package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runAuth(t *testing.T, token, header string) (int, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/send-alert", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	handler := BearerAuth(token)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(ctx)
	return rec.Code, err
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	_, err := runAuth(t, "secret", "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	_, err := runAuth(t, "secret", "Basic abc")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestBearerAuth_WrongToken(t *testing.T) {
	_, err := runAuth(t, "secret", "Bearer nope")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestBearerAuth_ValidToken(t *testing.T) {
	code, err := runAuth(t, "secret", "Bearer secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestBearerAuth_EmptyConfiguredTokenDisablesCheck(t *testing.T) {
	code, err := runAuth(t, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}
