package httputil

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigFastest

// HealthInfo is the body served by the health handler.
type HealthInfo struct {
	Status    string `json:"status"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
}

// MakeHealthHandler returns a handler reporting that the process is up since startedAt.
func MakeHealthHandler(log logrus.FieldLogger, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := HealthInfo{
			Status:    "ok",
			StartedAt: startedAt.UTC().Format(time.RFC3339),
			Uptime:    time.Since(startedAt).Truncate(time.Second).String(),
		}
		WriteJSON(log, w, http.StatusOK, info)
	}
}

// WriteJSON writes v as a JSON response.
func WriteJSON(log logrus.FieldLogger, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode json response.")
	}
}
