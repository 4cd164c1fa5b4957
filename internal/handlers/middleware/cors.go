package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

var corsMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace,
}

type corsHandler struct {
	opts     cors.Options
	standard http.Handler
	next     http.Handler
}

func corsOptions(allowedOrigins []string, logger *zerolog.Logger) cors.Options {
	return cors.Options{
		AllowedOrigins:       allowedOrigins,
		AllowedMethods:       corsMethods,
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{RequestIDHeader},
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusOK,
		Logger:               logger,
	}
}

// CORS wraps next with an origin allow-list. Allow-listed origins may use any
// method and any request header; other origins get no CORS headers.
// Preflight diagnostics go to logger at debug level.
func CORS(allowedOrigins []string, logger zerolog.Logger, next http.Handler) http.Handler {
	opts := corsOptions(allowedOrigins, &logger)
	return &corsHandler{
		opts:     opts,
		standard: cors.New(opts).Handler(next),
		next:     next,
	}
}

func (h *corsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.Header.Get("Access-Control-Request-Method")
	if r.Method != http.MethodOptions || method == "" || slices.Contains(h.opts.AllowedMethods, method) {
		h.standard.ServeHTTP(w, r)
		return
	}

	// cors.Options has no method wildcard; extension methods get a preflight
	// policy scoped to the one requested method.
	opts := h.opts
	opts.AllowedMethods = []string{method}
	cors.New(opts).Handler(h.next).ServeHTTP(w, r)
}
