package middleware

import (
	"net/http"

	"spaces-backend/pkg/observability"
)

// Tracing opens an X-Ray segment per request and annotates it with the
// route so invitation and membership traffic can be filtered in the console.
func Tracing(tracer *observability.Tracer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, seg := tracer.StartSegment(r.Context(), r.Method)
			defer seg.Close(nil)

			tracer.AddAnnotation(ctx, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
