package models

import "time"

// Admin represents a school administrator account
type Admin struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	SchoolID    string    `json:"schoolId"`
	Img         string    `json:"img,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminInput carries the create-admin form
type AdminInput struct {
	Name        string
	Email       string
	Password    string
	Designation string
	SchoolID    string
	Image       *FileUpload
}
