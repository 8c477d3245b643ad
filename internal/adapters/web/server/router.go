package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/netpath/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes builds the router. Everything except /healthz requires the API key when one is configured.
func SetupRoutes(s *Server) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging(s.logger))

	router.HandleFunc("/healthz", s.PathHandler.HandleHealth).Methods(http.MethodGet)

	auth := middleware.APIKeyMiddleware(s.apiKeyHash)
	router.Handle("/metrics", auth(promhttp.Handler())).Methods(http.MethodGet)
	router.Handle("/ws", auth(http.HandlerFunc(s.WSManager.HandleWebSocket))).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth)

	api.HandleFunc("/server", s.PathHandler.HandleServer).Methods(http.MethodGet)
	api.HandleFunc("/topology", s.PathHandler.HandleTopology).Methods(http.MethodGet)
	api.HandleFunc("/path", s.PathHandler.HandlePath).Methods(http.MethodGet)

	limit := middleware.RateLimitMiddleware(s.analyzeLimiter)
	api.Handle("/analyze", limit(http.HandlerFunc(s.AnalysisHandler.HandleAnalyze))).Methods(http.MethodPost)

	api.HandleFunc("/analyses", s.AnalysisHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/analyses/{id}", s.AnalysisHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/analyses/{id}/report.pdf", s.ReportHandler.HandleAnalysisPDF).Methods(http.MethodGet)

	return router
}
