package httpmiddleware

import (
	"net/http"

	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 response and logs it to lg with
// a stack trace. It sits outside InjectLogger, so it cannot rely on the
// request context carrying a logger. http.ErrAbortHandler is re-raised so the
// server can abort the connection as usual.
func Recovery(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				lg.Error("Panic recovered",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				w.Header().Set("Connection", "close")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
