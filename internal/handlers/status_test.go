package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/gemrelay/gemrelay/internal/models"
)

type fixedCounter int

func (f fixedCounter) Count() int { return int(f) }

func TestStatusHandler(t *testing.T) {
	t.Parallel()

	e := echo.New()
	NewStatusHandler(fixedCounter(3), models.NewCatalog("gemini-2.0-flash")).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.ActiveSessions)
	require.Equal(t, "gemini-2.0-flash", resp.DefaultModel)
	require.Contains(t, resp.Models, "gemini-2.5-pro")
}

func TestPingHandler(t *testing.T) {
	t.Parallel()

	e := echo.New()
	NewPingHandler().Register(e)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
