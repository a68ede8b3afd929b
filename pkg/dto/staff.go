package dto

import "github.com/google/uuid"

type AddStaffRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	StaffID      string `json:"staff_id" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
	PhoneNumber  string `json:"phone_number" binding:"required"`
	AssignedZone string `json:"assigned_zone"`
}

type StaffResponse struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	StaffID      string    `json:"staff_id"`
	Role         string    `json:"role"`
	PhoneNumber  string    `json:"phone_number"`
	AssignedZone string    `json:"assigned_zone"`
	CreatedAt    string    `json:"created_at"`
}

// StaffLoginRequest is the mobile-app credential check (phone + password).
type StaffLoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// LoginRequest is the dashboard login (staff id + password, issues a session).
type LoginRequest struct {
	StaffID  string `json:"staff_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}
