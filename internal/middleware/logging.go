package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"Elegora/pkg/apierror"
)

var logger *zap.SugaredLogger

// SetLogger задаёт логгер для всех мидлварей пакета.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	if w.data.status == 0 {
		w.data.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.data.size += n
	return n, err
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.data.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithLogging пишет в лог метод, путь, статус, размер ответа и длительность запроса.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data := &responseData{}
		next.ServeHTTP(&loggingResponseWriter{ResponseWriter: w, data: data}, r)
		if logger == nil {
			return
		}
		logger.Infow("request",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"uri", r.RequestURI,
			"status", data.status,
			"size", data.size,
			"duration", time.Since(start),
		)
	})
}

// WithRecovery превращает панику хендлера в 500 с JSON-телом ошибки.
func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if logger != nil {
					logger.Errorw("panic", "error", rec, "stack", string(debug.Stack()))
				}
				apierror.Write(w, apierror.InternalError("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
