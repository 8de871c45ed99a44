//go:build integration

package integration

import (
	"fmt"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

// Credentials accepted by the fake backend
const (
	SuperAdminEmail    = "root@schools.test"
	SuperAdminPassword = "correct-horse"
	SchoolAdminEmail   = "principal@schools.test"
)

// SeedSchools returns n schools named "School 01".."School n"
func SeedSchools(n int) []models.School {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	schools := make([]models.School, 0, n)
	for i := 1; i <= n; i++ {
		schools = append(schools, models.School{
			ID:            fmt.Sprintf("sch-%02d", i),
			SchoolID:      fmt.Sprintf("S%04d", i),
			SchoolName:    fmt.Sprintf("School %02d", i),
			SchoolEmail:   fmt.Sprintf("office%02d@schools.test", i),
			ContactNumber: fmt.Sprintf("555-01%02d", i),
			IsActive:      i%2 == 1,
			CreatedAt:     created.Add(time.Duration(i) * time.Hour),
		})
	}
	return schools
}

// SeedNotifications returns unread notifications n1..nN
func SeedNotifications(n int) []models.Notification {
	created := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	items := make([]models.Notification, 0, n)
	for i := 1; i <= n; i++ {
		kind := models.NotificationTypeSchool
		if i%2 == 0 {
			kind = models.NotificationTypeUser
		}
		items = append(items, models.Notification{
			ID:        fmt.Sprintf("n%d", i),
			Title:     fmt.Sprintf("Event %d", i),
			Message:   "Something happened",
			Type:      kind,
			CreatedAt: created.Add(time.Duration(i) * time.Minute),
		})
	}
	return items
}
