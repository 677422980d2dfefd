package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/planner"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)
			ctx := logg.WithField(r.Context(), "request_id", reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}

func recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					writeError(logg.WithField(r.Context(), "panic", rec), logg, w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type sessionKey struct{}

// withSession attaches the caller's planner session, starting a new one and
// setting the cookie when the cookie is missing, invalid or expired. A valid
// cookie past half its lifetime is re-minted for the same session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			sess  *planner.Session
			id    string
			renew bool
		)
		now := time.Now()
		if c, err := r.Cookie(sessionCookieName); err == nil {
			if sub, exp, err := s.tokens.parse(c.Value); err == nil {
				if existing, ok := s.store.Get(sub); ok {
					sess, id = existing, sub
					renew = s.tokens.stale(exp, now)
				}
			}
		}

		if sess == nil {
			id, sess = s.store.Create()
			renew = true
		}
		if renew {
			token, err := s.tokens.mint(id, now)
			if err != nil {
				writeError(r.Context(), s.log, w, err)
				return
			}
			http.SetCookie(w, s.tokens.cookie(token))
		}

		ctx := s.log.WithField(r.Context(), "session_id", id)
		ctx = context.WithValue(ctx, sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *planner.Session {
	sess, _ := ctx.Value(sessionKey{}).(*planner.Session)
	return sess
}
