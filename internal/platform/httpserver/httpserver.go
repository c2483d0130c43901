package httpserver

import (
	"net/http"
	"time"

	"recordgate/internal/platform/config"
)

// writeSlack leaves room to write an error body after a request times out.
const writeSlack = 5 * time.Second

// New builds the HTTP server. Write timeouts track the per-request budget.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + writeSlack,
		IdleTimeout:       60 * time.Second,
	}
}
