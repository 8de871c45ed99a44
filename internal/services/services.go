// Package services holds the console's use cases. Each service talks to the
// upstream backend through a narrow interface and audits what it changes.
package services

// Actor identifies the browser a request came from
type Actor struct {
	DeviceID  string
	IPAddress string
	UserAgent string
}
