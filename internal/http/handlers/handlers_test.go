package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renthub/laptop-bookings/internal/otp"
	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/internal/service"
	"github.com/renthub/laptop-bookings/internal/store"
	"github.com/renthub/laptop-bookings/pkg/config"
	"github.com/renthub/laptop-bookings/pkg/events"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTL = 30 * time.Minute
	cfg.OTP.TTL = 5 * time.Minute
	cfg.OTP.MaxAttempts = 5
	cfg.Booking.CancelWindow = 24 * time.Hour

	gateway, err := persist.NewFileGateway(t.TempDir())
	require.NoError(t, err)

	users := store.NewUsers()
	laptops := store.NewLaptops()
	bookings := store.NewBookings()
	bus := events.NoopPublisher{}
	registry := otp.NewRegistry(cfg.OTP.TTL, cfg.OTP.MaxAttempts)

	h := New(
		service.NewAuthService(users, gateway, bus, cfg),
		service.NewRecoveryService(users, registry, gateway, bus),
		service.NewLaptopService(laptops, gateway),
		service.NewBookingService(bookings, laptops, gateway, bus, cfg.Booking.CancelWindow),
		cfg,
	)

	srv := httptest.NewServer(h.Routes(nil))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func signup(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": email, "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	customer := signup(t, srv, "customer@example.com")
	admin := signup(t, srv, "admin@example.com")

	// Customers cannot stock inventory.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/laptops/", admin, map[string]any{
		"brand": "Lenovo", "model": "X1", "daily_price": 20,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/promote", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The role rides in the claims, so a fresh login is needed for an
	// admin token.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	admin = body["token"].(string)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/laptops/", admin, map[string]any{
		"brand": "Lenovo", "model": "X1", "daily_price": 20,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	laptop := body["laptop"].(map[string]any)
	laptopID := int64(laptop["id"].(float64))

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/bookings/", customer, map[string]any{
		"laptop_id": laptopID, "start_date": "2024-01-01", "end_date": "2024-01-03",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	booking := body["booking"].(map[string]any)
	assert.Equal(t, 60.0, booking["total_price"])
	assert.Equal(t, "confirmed", booking["status"])
	bookingID := int64(booking["id"].(float64))

	// Held laptop cannot be booked again.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/bookings/", admin, map[string]any{
		"laptop_id": laptopID, "start_date": "2024-02-01", "end_date": "2024-02-02",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Update cannot write status.
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/bookings/%d/update", srv.URL, bookingID), customer, map[string]any{
		"status": "cancelled",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/bookings/%d/update", srv.URL, bookingID), customer, map[string]any{
		"end_date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, body["booking"].(map[string]any)["total_price"])

	// Another user cannot touch the booking.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/bookings/%d/cancel", srv.URL, bookingID), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/bookings/%d/cancel", srv.URL, bookingID), customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["booking"].(map[string]any)["status"])

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/bookings/%d/cancel", srv.URL, bookingID), customer, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The laptop is free again.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/bookings/", admin, map[string]any{
		"laptop_id": laptopID, "start_date": "2024-03-01", "end_date": "2024-03-02",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAuthGatesOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	customer := signup(t, srv, "customer@example.com")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/bookings/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/bookings/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/users", customer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "customer@example.com", body["email"])
	_, leaked := body["password_hash"]
	assert.False(t, leaked)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "customer@example.com", "password": "wrongwrongwrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPasswordRecoveryOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "customer@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/forgot-password", "", map[string]string{
		"email": "customer@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	code, _ := body["otp"].(string)
	require.Len(t, code, 6)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/reset-password", "", map[string]string{
		"email": "customer@example.com", "otp": "000000", "new_password": "freshpassword",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/reset-password", "", map[string]string{
		"email": "customer@example.com", "otp": code, "new_password": "freshpassword",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "customer@example.com", "password": "freshpassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Spent code does not work twice.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/reset-password", "", map[string]string{
		"email": "customer@example.com", "otp": code, "new_password": "yetanotherpw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminUserManagementOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	admin := signup(t, srv, "admin@example.com")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/promote", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	admin = body["token"].(string)

	signup(t, srv, "customer@example.com")

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/admin/users/2", admin, map[string]string{
		"name": "Renamed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", body["user"].(map[string]any)["name"])

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/admin/users/2", admin, map[string]string{
		"role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/users/2", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/users/2", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
