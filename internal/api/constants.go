package api

// HTTP layer defaults.
const (
	DefaultCookieName = "leafnote_session"
	DefaultMaxUpload  = 1 << 20

	// stateCookieName carries the OAuth state between redirect and callback.
	stateCookieName = "leafnote_oauth_state"
	// csrfCookieName carries the anonymous CSRF binding for login and signup forms.
	csrfCookieName = "leafnote_csrf"
	csrfFormField  = "csrf_token"

	stateCookieMaxAge = 10 * 60
)

// Cache-Control header values.
const (
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-store"
)
