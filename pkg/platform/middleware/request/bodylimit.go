package request

import (
	"net/http"

	"fieldforce/pkg/platform/httputil"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length above the cap is
// rejected up front with 413; otherwise http.MaxBytesReader fails the read, which the
// JSON decoder reports as a bad request.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
					Error:            "request_too_large",
					ErrorDescription: "request body too large",
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
