package dto

import authdomain "genius-keeper-backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=merchandiser manager"`
}

type RegisterFCMTokenRequest struct {
	Token      string            `json:"token" binding:"required"`
	DeviceInfo string            `json:"device_info"`
	Metadata   map[string]string `json:"metadata"`
}

type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	User        *authdomain.User `json:"user"`
}
