package models

import (
	"time"
)

// UserRole is the platform role an account acts under
type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleDonor    UserRole = "donor"
	RoleReviewer UserRole = "reviewer"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleDonor, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

// VerificationStatus is the identity verification state of an account
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationApproved   VerificationStatus = "approved"
	VerificationRejected   VerificationStatus = "rejected"
)

// Valid reports whether v is a known verification status
func (v VerificationStatus) Valid() bool {
	switch v {
	case VerificationUnverified, VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID                 string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Username           string             `json:"username" gorm:"type:varchar(255);not null;unique;index"`
	PasswordHash       string             `json:"-" gorm:"type:varchar(255);not null"`
	FirstName          string             `json:"first_name" gorm:"type:varchar(255)"`
	LastName           string             `json:"last_name" gorm:"type:varchar(255)"`
	Role               UserRole           `json:"role" gorm:"type:varchar(20);not null;default:'student';index"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:varchar(20);not null;default:'unverified'"`
	IsActive           bool               `json:"is_active" gorm:"default:true;index"`
	TokenVersion       uint               `json:"token_version" gorm:"default:0"`
	LastLoginAt        *time.Time         `json:"last_login_at"`
	// Relationships
	RefreshTokens []RefreshToken `json:"refresh_tokens,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID                 string             `json:"id"`
	Username           string             `json:"username"`
	FirstName          string             `json:"first_name"`
	LastName           string             `json:"last_name"`
	Role               UserRole           `json:"role" example:"student"`
	VerificationStatus VerificationStatus `json:"verification_status" example:"approved"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	LastLoginAt        *time.Time         `json:"last_login_at,omitempty"`
}

// ToResponse converts a User to its public view
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
		LastLoginAt:        u.LastLoginAt,
	}
}

// SetVerificationRequest represents an admin request to change a user's verification status
type SetVerificationRequest struct {
	Status VerificationStatus `json:"status" binding:"required" example:"approved"`
}

// SetRoleRequest represents an admin request to change a user's role
type SetRoleRequest struct {
	Role UserRole `json:"role" binding:"required" example:"reviewer"`
}
