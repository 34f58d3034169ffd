package usecase

import (
	"context"
	"errors"

	authdomain "genius-keeper-backend/internal/auth/domain"
	authdto "genius-keeper-backend/internal/auth/dto"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthUsecase covers login, token validation and device registration.
type AuthUsecase interface {
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error)

	RegisterFCMToken(ctx context.Context, userID string, req *authdto.RegisterFCMTokenRequest) error
	UnregisterFCMToken(ctx context.Context, userID, token string) error
}

// IdentityResolver maps a management email to a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*authdomain.User, error)
}

// EndpointRegistrar converts a raw device token into the identifier the push
// backend addresses. Only backends with per-device endpoints need one.
type EndpointRegistrar interface {
	RegisterEndpoint(ctx context.Context, deviceToken string) (string, error)
}
