package models

import (
	"time"

	"github.com/google/uuid"
)

type StaffRole string

const (
	RoleSecurity    StaffRole = "Security"
	RoleMedical     StaffRole = "Medical"
	RoleVolunteer   StaffRole = "Volunteer"
	RoleAdmin       StaffRole = "Admin"
	RoleGroundStaff StaffRole = "Ground Staff"
)

type Staff struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	StaffID      string    `json:"staff_id" db:"staff_id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         StaffRole `json:"role" db:"role"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	AssignedZone string    `json:"assigned_zone" db:"assigned_zone"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
