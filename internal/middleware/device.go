package middleware

import (
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/google/uuid"
)

// Device assigns every browser a stable device id through the consoleDevice
// cookie and places it in the request context. Unparseable ids are replaced.
func Device(cookies session.CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var deviceID string
			if c, err := r.Cookie(session.DeviceCookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					deviceID = id.String()
				}
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
				session.SetDeviceCookie(w, deviceID, cookies)
			}

			next.ServeHTTP(w, r.WithContext(session.WithDeviceID(r.Context(), deviceID)))
		})
	}
}
