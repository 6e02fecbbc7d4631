// Package health serves the platform health-check endpoint for hosted
// deployments. The server is best-effort: a bind failure is logged and the
// agent keeps running without it.
package health

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const agentName = "English Teacher Agent"

// Handler answers GET /health with a JSON status document and every other
// path with a plain-text banner, both 200. Hosting platforms only care that
// the port answers.
type Handler struct{}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"agent":  agentName,
		})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s is running\n", agentName)
}

// Serve starts the health server on the given port in a background
// goroutine. Errors are logged, never fatal: an agent that cannot bind its
// health port still serves its room.
func Serve(logger *slog.Logger, port int) {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           Handler{},
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting health check server", "port", port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health check server failed", "port", port, "error", err)
		}
	}()
}
