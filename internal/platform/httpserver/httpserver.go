// Package httpserver builds the process's HTTP server with timeouts sized
// for proof generation, which can legitimately run for tens of seconds.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server. Write and idle timeouts stay generous because
// high-priority proof requests hold the connection for up to a minute; the
// per-request deadline lives in the router middleware instead.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
