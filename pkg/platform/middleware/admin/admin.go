package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/platform/httputil"
	"fieldforce/pkg/requestcontext"
)

const (
	HeaderToken = "X-Admin-Token"
	HeaderActor = "X-Admin-Actor"
)

// RequireAdminToken guards agent write routes. The token is compared in constant time;
// an empty expected token locks the routes entirely rather than opening them.
// The optional X-Admin-Actor header is carried into the context for audit lines.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(HeaderToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			if actor := r.Header.Get(HeaderActor); actor != "" {
				ctx = requestcontext.WithAdminActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
