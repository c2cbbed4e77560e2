package api

import (
	"net/http"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

func (s *Server) sessionCookie(bound *service.BoundSession) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    bound.Token,
		Path:     "/",
		Expires:  bound.ExpiresAt,
		MaxAge:   int(time.Until(bound.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) expiredCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, bound *service.BoundSession) {
	http.SetCookie(w, s.sessionCookie(bound))
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.expiredCookie(s.opts.CookieName, "/"))
}

func (s *Server) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionMeta describes the client a session is bound for.
func sessionMeta(r *http.Request) service.SessionMeta {
	return service.SessionMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
