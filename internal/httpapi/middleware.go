package httpapi

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"fjacquet/expense-categorizer/internal/logging"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// requestLogging logs each routed request, records its metrics and turns
// panics into a generic 500.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := routeLabel(r)
		log := s.logger.WithFields(
			logging.Field{Key: "request_id", Value: uuid.NewString()},
			logging.Field{Key: logging.FieldMethod, Value: r.Method},
			logging.Field{Key: logging.FieldPath, Value: r.URL.Path},
		)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(
					logging.Field{Key: "panic", Value: rec},
					logging.Field{Key: "stack", Value: string(debug.Stack())},
				).Error("Recovered from handler panic")
				if !rw.wroteHeader {
					writeJSON(rw, http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
				}
			}

			duration := time.Since(start)
			s.metrics.ObserveHTTPRequest(route, strconv.Itoa(rw.statusCode), duration)
			log.WithFields(
				logging.Field{Key: logging.FieldStatus, Value: rw.statusCode},
				logging.Field{Key: logging.FieldDuration, Value: duration.Milliseconds()},
			).Debug("Request completed")
		}()

		next.ServeHTTP(rw, r)
	})
}

// routeLabel names the matched route as "METHOD /template" so metric
// labels stay bounded.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return r.Method + " " + tpl
		}
	}
	return r.Method + " " + r.URL.Path
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
