package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

// HealthStatus is the health check payload: process status plus the
// active detection model.
type HealthStatus struct {
	Status       string    `json:"status"`
	Version      string    `json:"version"`
	ModelVersion string    `json:"model_version"`
	Timestamp    time.Time `json:"timestamp"`
}

// HealthHandler reports service and provider identity.
func HealthHandler(version string, provider analysis.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(HealthStatus{
			Status:       "healthy",
			Version:      version,
			ModelVersion: provider.Version(),
			Timestamp:    time.Now(),
		})
	}
}

// LivenessHandler is the simplest possible probe.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
