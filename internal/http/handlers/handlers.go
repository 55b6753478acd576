package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/renthub/laptop-bookings/internal/http/response"
	"github.com/renthub/laptop-bookings/internal/service"
	"github.com/renthub/laptop-bookings/pkg/auth"
	"github.com/renthub/laptop-bookings/pkg/config"
	"github.com/renthub/laptop-bookings/pkg/logger"
)

type Handlers struct {
	authService     service.AuthService
	recoveryService service.RecoveryService
	laptopService   service.LaptopService
	bookingService  service.BookingService
	config          *config.Config
}

func New(
	authService service.AuthService,
	recoveryService service.RecoveryService,
	laptopService service.LaptopService,
	bookingService service.BookingService,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:     authService,
		recoveryService: recoveryService,
		laptopService:   laptopService,
		bookingService:  bookingService,
		config:          config,
	}
}

type contextKey string

const claimsKey contextKey = "claims"

// RequireJWT authenticates the bearer token and, when requiredRole is set,
// enforces it. Admin passes any role gate.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteError(w, http.StatusUnauthorized, "Missing or invalid authorization header", response.CodeUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != "admin" {
				response.WriteError(w, http.StatusForbidden, "Insufficient permissions", response.CodeForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
