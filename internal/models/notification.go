package models

import "time"

// Notification types the dashboard renders with dedicated icons
const (
	NotificationTypeSchool = "school"
	NotificationTypeUser   = "user"
)

// Notification is a single inbox entry owned by the backend
type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
