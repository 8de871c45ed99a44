package models

import "time"

// School represents a tenant school managed by the super admin
type School struct {
	ID            string    `json:"_id"`
	SchoolID      string    `json:"schoolId"`
	SchoolName    string    `json:"schoolName"`
	SchoolEmail   string    `json:"schoolEmail"`
	ContactNumber string    `json:"contactNumber"`
	SchoolLogo    string    `json:"schoolLogo"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SchoolInput carries the create/update form. Logo is required on create only.
type SchoolInput struct {
	SchoolName    string
	SchoolEmail   string
	ContactNumber string
	Logo          *FileUpload
}

// SchoolQuery filters and paginates the school table
type SchoolQuery struct {
	Search   string
	Page     int
	PageSize int
}

// SchoolPage is one page of the filtered school table
type SchoolPage struct {
	Items      []School `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
}

// FileUpload is a file part forwarded to the backend in a multipart body
type FileUpload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}
