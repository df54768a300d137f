package server

import (
	"context"
	"net/http"

	"github.com/matzehuels/tabpanel/pkg/errors"
	"github.com/matzehuels/tabpanel/pkg/session"
)

type sessionKey struct{}

// withSession resolves the session cookie, starting a new session when the
// cookie is missing or stale.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var sess *session.Session
		if c, err := r.Cookie(CookieName); err == nil {
			sess, err = s.store.Get(ctx, c.Value)
			if err != nil && !errors.Is(err, errors.ErrCodeSessionNotFound) {
				s.writeError(w, err)
				return
			}
		}
		if sess == nil {
			var err error
			if sess, err = s.store.Create(ctx); err != nil {
				s.writeError(w, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}
