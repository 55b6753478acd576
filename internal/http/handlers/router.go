package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes wires the API surface. otpLimit guards passcode issuance; callers
// pass the configured rate limiter (or nothing in tests).
func (h *Handlers) Routes(otpLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Laptop Booking Server is Running!"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if otpLimit != nil {
				r.With(otpLimit).Post("/forgot-password", h.ForgotPassword)
			} else {
				r.Post("/forgot-password", h.ForgotPassword)
			}
			r.Post("/reset-password", h.ResetPassword)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT(""))
				r.Get("/me", h.Me)
				r.Post("/promote", h.Promote)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/users", h.ListUsers)
			r.Put("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)
		})

		r.Route("/laptops", func(r chi.Router) {
			r.With(h.RequireJWT("")).Get("/", h.ListLaptops)
			r.With(h.RequireJWT("admin")).Post("/", h.AddLaptop)
			r.With(h.RequireJWT("admin")).Delete("/{id}", h.DeleteLaptop)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.Post("/", h.CreateBooking)
			r.Get("/", h.ListBookings)
			r.Delete("/{id}/cancel", h.CancelBooking)
			r.Put("/{id}/update", h.UpdateBooking)
		})
	})

	return r
}
