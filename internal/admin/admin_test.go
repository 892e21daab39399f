package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guarded(token string) *echo.Echo {
	e := echo.New()
	e.POST("/templates", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, RequireToken(token))
	return e
}

func TestRequireToken(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"guard disabled", "", "", http.StatusCreated},
		{"matching token", "s3cret", "s3cret", http.StatusCreated},
		{"missing token", "s3cret", "", http.StatusUnauthorized},
		{"wrong token", "s3cret", "guess", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/templates", nil)
			if tt.header != "" {
				req.Header.Set(TokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			guarded(tt.token).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetServerHealthHandler(t *testing.T) {
	e := echo.New()
	e.GET("/health/server", GetServerHealthHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/server", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	for _, key := range []string{"runtime", "cpu", "memory", "disk"} {
		assert.Contains(t, body, key)
	}
}
