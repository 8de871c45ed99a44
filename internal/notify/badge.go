package notify

import (
	"strconv"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

// MaxBadge is the largest count rendered as a number
const MaxBadge = 99

// Badge renders an unread count: "" for zero, "99+" above MaxBadge
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > MaxBadge:
		return strconv.Itoa(MaxBadge) + "+"
	default:
		return strconv.Itoa(unread)
	}
}

// CountUnread counts the items with IsRead false
func CountUnread(items []models.Notification) int {
	n := 0
	for _, item := range items {
		if !item.IsRead {
			n++
		}
	}
	return n
}
