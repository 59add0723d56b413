package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"oseplatform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		BaseURL:         srv.URL + "/api/v1/",
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestLoginStoresTokenAndLogoutClears(t *testing.T) {
	var logoutAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			writeJSON(w, http.StatusOK, models.LoginResponse{Token: "tok", Operator: models.Operator{Email: "ana@ose.test"}})
		case "/api/v1/auth/logout":
			logoutAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
		}
	})

	_, err := c.Login(context.Background(), "ana@ose.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", c.Session().Token())
	assert.True(t, c.Session().Active())
	assert.Equal(t, "ana@ose.test", c.Session().Operator().Email)

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, "Bearer tok", logoutAuth)
	assert.Empty(t, c.Session().Token())
}

func TestValidateBulkAdaptsWireSchema(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.BulkValidateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, []string{"861888082667623", "12345"}, req.Series)
		writeJSON(w, http.StatusOK, models.BulkValidateWire{
			Success: true, Total: 2, Validos: 1, Invalidos: 1,
			Resultados: []models.SerieResultado{
				{Serie: "861888082667623", Tipo: "imei", Valido: true, Existe: true, IMEI: "861888082667623", ICCID: "89882390001112223334", Marca: "Teltonika"},
				{Serie: "12345", Tipo: "unknown", Error: "invalid format"},
			},
		})
	})

	res, err := c.ValidateBulk(context.Background(), []string{"861888082667623", "12345"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 1, res.Invalid)
	assert.Equal(t, "Teltonika", res.Results[0].Serial.Marca)
	assert.Equal(t, "89882390001112223334", res.Results[0].Serial.ICCID)
	assert.Equal(t, "12345", res.Results[1].Serial.IMEI)
	assert.Equal(t, "invalid format", res.Results[1].Error)
}

func TestReadsAreRetriedOn5xx(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, models.ConfigOptions{Customers: []models.Customer{{ID: "c1"}}})
	})

	opts, err := c.ConfigOptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, opts.Customers, 1)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestSendIsNeverRetried(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Send failed", "details": "smtp down"})
	})

	_, err := c.Send(context.Background(), models.SeriesNotificationRequest{Location: "LOT-1"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Send failed", apiErr.Message)
	assert.Equal(t, "smtp down", apiErr.Details)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
	})

	_, err := c.HistoryItem(context.Background(), "n-1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, int32(1), attempts.Load())
}

func TestHistoryQueryAndSearchPaths(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		if r.URL.Path == "/api/v1/series-notifications/history" {
			writeJSON(w, http.StatusOK, models.HistoryPage{Total: 1, Pages: 1})
			return
		}
		writeJSON(w, http.StatusOK, models.ScanResult{Success: true})
	})

	_, err := c.History(context.Background(), models.HistoryFilter{Email: "ops@acme.test", Customer: "Acme", Location: "LOT"}, 2, 10)
	require.NoError(t, err)
	_, err = c.SearchBy(context.Background(), models.ScanTypePallet, "PL 1")
	require.NoError(t, err)
	_, err = c.SmartScan(context.Background(), "CJ-1")
	require.NoError(t, err)
	_, err = c.SearchBy(context.Background(), "shelf", "x")
	assert.Error(t, err)

	assert.Equal(t, []string{
		"/api/v1/series-notifications/history?limit=10&page=2&search_customer=Acme&search_email=ops%40acme.test&search_location=LOT",
		"/api/v1/series-notifications/search/by-pallet/PL%201",
		"/api/v1/series-notifications/search/smart-scan?code=CJ-1",
	}, seen)
}

func TestAdaptBulkValidation_FillsIdentifierFromKind(t *testing.T) {
	res := adaptBulkValidation(models.BulkValidateWire{Resultados: []models.SerieResultado{
		{Serie: "89882390001112223334", Tipo: "iccid", Error: "not found in inventory"},
		{Serie: "9912345678901234567890123", Tipo: "package", YaNotificado: true, Existe: true, NroPaquete: "9912345678901234567890123"},
	}})

	assert.Equal(t, "89882390001112223334", res.Results[0].Serial.ICCID)
	assert.Equal(t, "9912345678901234567890123", res.Results[1].Serial.PackageNo)
	assert.Equal(t, 2, res.Invalid)
	assert.Equal(t, 1, res.AlreadyNotified)
}
