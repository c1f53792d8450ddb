package models

import "time"

// Verification request statuses
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// VerificationRequest is a user's request for the verified badge.
// The profile fields are a snapshot taken when the request was submitted.
type VerificationRequest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	Handle      string     `json:"handle"`
	DisplayName string     `json:"display_name"`
	Bio         string     `json:"bio,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Reason      string     `json:"reason,omitempty" gorm:"type:text"`
	Status      string     `json:"status" gorm:"size:20;default:'pending';index"`
	ReviewedBy  *uint      `json:"reviewed_by,omitempty" gorm:"index"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SubmitVerificationRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type DecideVerificationRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
}
