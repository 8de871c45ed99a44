package session

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names owned by the console
const (
	DeviceCookieName = "consoleDevice"
	CSRFCookieName   = "csrf_token"
)

// deviceCookieTTL bounds how long a browser keeps its device id
const deviceCookieTTL = 400 * 24 * time.Hour

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

// SetTokenCookie sets the session token cookie on path "/"
func SetTokenCookie(w http.ResponseWriter, name, token string, ttl time.Duration, config CookieConfig) {
	setCookie(w, name, token, ttl, true, config)
}

// ClearTokenCookie removes the session token cookie
func ClearTokenCookie(w http.ResponseWriter, name string, config CookieConfig) {
	setCookie(w, name, "", -1, true, config)
}

// SetDeviceCookie pins the browser to its device namespace
func SetDeviceCookie(w http.ResponseWriter, deviceID string, config CookieConfig) {
	setCookie(w, DeviceCookieName, deviceID, deviceCookieTTL, true, config)
}

// SetCSRFTokenCookie sets a CSRF token in a readable cookie (not httpOnly).
// The dashboard echoes it in the X-CSRF-Token header.
func SetCSRFTokenCookie(w http.ResponseWriter, token string, ttl time.Duration, config CookieConfig) {
	setCookie(w, CSRFCookieName, token, ttl, false, config)
}

// ClearCSRFTokenCookie clears the CSRF token cookie
func ClearCSRFTokenCookie(w http.ResponseWriter, config CookieConfig) {
	setCookie(w, CSRFCookieName, "", -1, false, config)
}

// ttl < 0 deletes the cookie
func setCookie(w http.ResponseWriter, name, value string, ttl time.Duration, httpOnly bool, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.Domain,
		HttpOnly: httpOnly,
		Secure:   config.Secure,
		SameSite: ParseSameSite(config.SameSite),
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl / time.Second)
		cookie.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, cookie)
}

// ParseSameSite converts a config string to an http.SameSite constant
func ParseSameSite(sameSite string) http.SameSite {
	switch strings.ToLower(sameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
