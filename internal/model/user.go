package model

import "time"

// Role represents an evaluator account role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEvaluator Role = "evaluator"
)

// User represents an evaluator or admin account.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for evaluator authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ForgotPasswordRequest starts the OTP password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=120"`
}

// VerifyOTPRequest exchanges a one-time code for a reset ticket.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email,max=120"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest sets a new password using a reset ticket.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email,max=120"`
	Ticket      string `json:"ticket" binding:"required,min=16,max=128"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// AdminResetPasswordRequest lets an admin overwrite another user's password.
type AdminResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email,max=120"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ChangePasswordRequest updates the authenticated user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=4,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}
