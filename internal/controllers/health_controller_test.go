package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"qrd/internal/models"
)

func TestHealth(t *testing.T) {
	hc := NewHealthController(&mockRegistry{count: 7}, &mockTokenService{current: &models.TokenRecord{Value: "tok1"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 7, resp.Customers)
	assert.True(t, resp.TokenActive)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, 0.0)
}

func TestHealth_NoTokenMintedYet(t *testing.T) {
	hc := NewHealthController(&mockRegistry{}, &mockTokenService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.TokenActive)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(&mockRegistry{}, &mockTokenService{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()

	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
