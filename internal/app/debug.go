package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"latte/pkg/logging"
)

// debugRouter serves the pprof endpoints under /debug.
func debugRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/debug", middleware.Profiler())
	return r
}

// startDebugServer serves the profiler on localhost:port and returns a
// function that shuts it down.
func startDebugServer(port int) func() {
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           debugRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info("Debug", "Profiler listening on http://%s/debug/pprof/", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Debug", "Profiler stopped: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
