package api

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/xsrftoken"
)

// CSRF actions.
const (
	csrfLogin   = "login"
	csrfSignup  = "signup"
	csrfCompose = "compose"
)

// csrfToken returns a form token for action. Signed-in callers are bound by
// session id; anonymous visitors get a random binding cookie.
func (s *Server) csrfToken(w http.ResponseWriter, r *http.Request, action string) string {
	binding := s.csrfBinding(r)
	if binding == "" {
		binding = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookieName,
			Value:    binding,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return xsrftoken.Generate(s.opts.CSRFKey, binding, action)
}

// validCSRF checks the form token of a parsed POST request.
func (s *Server) validCSRF(r *http.Request, action string) bool {
	binding := s.csrfBinding(r)
	if binding == "" {
		return false
	}
	return xsrftoken.Valid(r.PostFormValue(csrfFormField), s.opts.CSRFKey, binding, action)
}

func (s *Server) csrfBinding(r *http.Request) string {
	if caller := IdentityFrom(r.Context()); caller != nil {
		return caller.SessionID
	}
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
