package dto

// ProfileReq represents the request body for PUT /auth/profile.
type ProfileReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordReq represents the request body for PUT /auth/password.
type PasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
