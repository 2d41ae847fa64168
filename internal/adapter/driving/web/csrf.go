package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	csrfCookieName = "gtm_csrf"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
)

// csrfToken returns the request's double-submit token, issuing one when the
// request carries none. Forms embed it as a hidden field.
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return issueCSRF(w, r)
}

// issueCSRF sets a fresh token. Connect calls it so a token planted before
// sign-in does not survive into the session.
func issueCSRF(w http.ResponseWriter, r *http.Request) string {
	b := make([]byte, 32)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	token := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, csrfCookie(r, token, 0))
	return token
}

// clearCSRF expires the token cookie.
func clearCSRF(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, csrfCookie(r, "", -1))
}

func csrfCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     csrfCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	}
}

// validateCSRF reports whether the submitted token, from the header or the
// form field, matches the cookie.
func validateCSRF(r *http.Request) bool {
	c, err := r.Cookie(csrfCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	submitted := r.Header.Get(csrfHeader)
	if submitted == "" {
		submitted = r.FormValue(csrfFormField)
	}
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(c.Value)) == 1
}
