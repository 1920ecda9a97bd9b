package dto

import "github.com/ringbuz/ringbuz-api/internal/models"

// UpdateProfileRequest contains self-service profile edits.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Website   *string `json:"website" validate:"omitempty,url"`
}

// AdminUpdateProfileRequest contains fields only administrators may change.
type AdminUpdateProfileRequest struct {
	Role   *models.UserRole `json:"role"`
	Active *bool            `json:"active"`
}

// ChangePasswordRequest rotates the account password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
