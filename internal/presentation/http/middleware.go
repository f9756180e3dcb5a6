package httppresentation

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/plantnet/backend/internal/domain/user"
	"github.com/plantnet/backend/internal/pkg/logging"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type identityKey struct{}

// identityFrom returns the authenticated email stored by withAuth.
func identityFrom(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(identityKey{}).(string)
	return email, ok && email != ""
}

// statusRecorder captures the response code for metrics and access
// logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// wrap applies the per-route chain: trace span → request logger →
// metrics → access log → handler.
func (h *Handler) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "HTTP "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("http.method", r.Method),
			),
		)
		defer span.End()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = logging.ContextWithLogger(ctx, h.log)
		ctx = logging.With(ctx,
			zap.String("request_id", requestID),
			zap.String("route", route),
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next(rec, r.WithContext(ctx))

		latency := time.Since(start)
		status := strconv.Itoa(rec.status)
		h.metrics.requests.WithLabelValues(route, r.Method, status).Inc()
		h.metrics.duration.WithLabelValues(route).Observe(latency.Seconds())
		span.SetAttributes(attribute.Int("http.status_code", rec.status))

		logging.FromContext(ctx).Info("http_request",
			zap.String("method", r.Method),
			zap.Int("status", rec.status),
			zap.Duration("latency", latency),
		)
	}
}

// withAuth verifies the session cookie and stores the identity email in
// the request context. It sets no role expectations; role checks read
// current state through the access guard.
func (h *Handler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized access"))
			return
		}
		email, err := h.tokens.Verify(cookie.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, email)
		ctx = logging.With(ctx, zap.String("identity", email))
		next(w, r.WithContext(ctx))
	}
}

// withSelf additionally requires the path {email} to match the
// authenticated identity.
func (h *Handler) withSelf(next http.HandlerFunc) http.HandlerFunc {
	return h.withAuth(func(w http.ResponseWriter, r *http.Request) {
		email, _ := identityFrom(r.Context())
		if r.PathValue("email") != email {
			writeError(w, apperr.New(apperr.KindUnauthorized, "forbidden: identity mismatch"))
			return
		}
		next(w, r)
	})
}

// withRole re-verifies the caller's stored role through the access
// guard before the handler runs.
func (h *Handler) withRole(role user.Role, next http.HandlerFunc) http.HandlerFunc {
	return h.withAuth(func(w http.ResponseWriter, r *http.Request) {
		email, _ := identityFrom(r.Context())
		if err := h.access.Authorize(r.Context(), email, role); err != nil {
			writeError(w, err)
			return
		}
		next(w, r)
	})
}
