package api

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewServer wraps handler in an http.Server. Request contexts are cancelled
// as soon as Shutdown begins, which ends open event streams; Shutdown alone
// waits for them indefinitely.
func NewServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
