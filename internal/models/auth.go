package models

import "time"

// RoleSuperAdmin is the only role allowed to open a console session
const RoleSuperAdmin = "super-admin"

// LoginResult is the resolved payload of a successful backend login
type LoginResult struct {
	Token   string
	Role    string
	Message string
}

// Profile is the signed-in super admin
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Img       string    `json:"img"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
