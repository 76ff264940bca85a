package health

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tachyon-hq/intent-engine/pkg/circuitbreaker"
	"github.com/tachyon-hq/intent-engine/pkg/tracking"
)

// Server represents a health check HTTP server
type Server struct {
	port             string
	store            *tracking.Store
	breaker          *circuitbreaker.CircuitBreaker
	verifierEndpoint string
	indexerEndpoint  string
	metricsAPIKey    string
}

// NewServer creates a new health check server
func NewServer(port string, store *tracking.Store, breaker *circuitbreaker.CircuitBreaker, verifierEndpoint, indexerEndpoint string) *Server {
	return &Server{
		port:             port,
		store:            store,
		breaker:          breaker,
		verifierEndpoint: verifierEndpoint,
		indexerEndpoint:  indexerEndpoint,
		metricsAPIKey:    os.Getenv("METRICS_API_KEY"),
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start starts the health check server. It blocks until the listener
// fails.
func (s *Server) Start() {
	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness check
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if s.breaker != nil && s.breaker.IsOpen() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Verifier circuit open"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	// Tracking status endpoint
	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]interface{})
		status["verifier_endpoint"] = s.verifierEndpoint
		status["indexer_endpoint"] = s.indexerEndpoint

		if s.breaker != nil {
			failures, tripped, lastFailure := s.breaker.State()
			circuit := map[string]interface{}{
				"failure_count": failures,
				"open":          tripped,
			}
			if !lastFailure.IsZero() {
				circuit["last_failure"] = lastFailure
			}
			status["verifier_circuit"] = circuit
		}

		if s.store != nil {
			tracked := s.store.GetTrackedIntents()
			byState := make(map[string]int)
			for _, intent := range tracked {
				byState[string(intent.State)]++
			}
			status["tracked_intents"] = len(tracked)
			status["intents_by_state"] = byState
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding status JSON: %v", err)
		}
	})

	// Circuit breaker admin control endpoint
	http.HandleFunc("/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if s.breaker == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("No circuit breaker configured"))
			return
		}

		s.breaker.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Verifier circuit breaker reset"))
	})

	// Expose Prometheus metrics with API key authentication
	http.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	log.Printf("Starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, nil); err != nil {
		log.Printf("Health server error: %v", err)
	}
}
