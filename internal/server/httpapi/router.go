package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptopay/internal/server/service"
)

type Router struct {
	services        *service.Services
	logger          *log.Logger
	maxRequestBytes int64
}

// NewRouter wires every gateway endpoint. Paths keep the mixed casing the
// dashboard and payment widget already send; changing them would break
// deployed clients.
func NewRouter(services *service.Services, logger *log.Logger, maxRequestBytes int64) http.Handler {
	r := &Router{services: services, logger: logger, maxRequestBytes: maxRequestBytes}
	mux := chi.NewRouter()
	mux.Use(metricsMiddleware)

	mux.Get("/health", r.handleHealth)
	mux.Get("/swagger.yaml", r.handleSwagger)
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	mux.Post("/api/Auth/register", r.handleRegister)
	mux.Post("/api/Auth/login", r.handleLogin)
	mux.Get("/api/PaymentPage/{id}", r.handleGetPage)
	mux.Get("/api/Transaction/verify", r.handleVerify)

	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Post("/api/auth/logout", r.handleLogout)
		pr.Get("/api/auth/user-details", r.handleUserDetails)
		pr.Put("/api/auth/updateDisplayName", r.handleUpdateDisplayName)
		pr.Put("/api/auth/updatePassword", r.handleUpdatePassword)

		pr.Get("/api/PaymentPage/allbyuserid/{userID}", r.handleListPages)
		pr.Post("/api/PaymentPage/create", r.handleCreatePage)
		pr.Put("/api/PaymentPage/update", r.handleUpdatePage)
		pr.Delete("/api/PaymentPage/delete/{id}", r.handleDeletePage)
		pr.Post("/api/PaymentPage/convertToUSD", r.handleConvertToUSD)
		pr.Post("/api/PaymentPage/convertToCrypto", r.handleConvertToCrypto)

		pr.Get("/api/Earnings/view-earnings", r.handleViewEarnings)
		pr.Get("/api/Earnings/view-withdrawal-history", r.handleWithdrawalHistory)
		pr.Post("/api/Earnings/withdraw-earnings", r.handleWithdraw)
		pr.Get("/api/Earnings/generate-earnings-report", r.handleEarningsReport)
	})

	return mux
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON request body, enforcing the configured size cap.
func (r *Router) decodeBody(w http.ResponseWriter, req *http.Request, v any) bool {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request entity too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
