package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "genius-keeper-backend/internal/auth/domain"
	authdto "genius-keeper-backend/internal/auth/dto"
	"genius-keeper-backend/internal/auth/repository"
	"genius-keeper-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AuthService implements AuthUsecase and IdentityResolver
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.FCMTokenRepository
	endpoints EndpointRegistrar
	config    *config.Config
	now       func() time.Time
	log       *logrus.Entry
}

// NewAuthUsecase creates the auth service. endpoints may be nil.
func NewAuthUsecase(userRepo repository.UserRepository, tokenRepo repository.FCMTokenRepository, endpoints EndpointRegistrar, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		endpoints: endpoints,
		config:    cfg,
		now:       time.Now,
		log:       logrus.WithField("component", "auth"),
	}
}

func (u *AuthService) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}

	if user == nil || !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return u.issue(user)
}

func (u *AuthService) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := authdomain.Role(req.Role)
	if role == "" {
		role = authdomain.RoleMerchandiser
	}

	user := &authdomain.User{
		Email:    email,
		Password: hashedPassword,
		Name:     req.Name,
		Role:     role,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("[Auth] user registered")
	return u.issue(user)
}

func (u *AuthService) issue(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

func (u *AuthService) generateAccessToken(user *authdomain.User) (string, error) {
	now := u.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *AuthService) ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(u.now))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Resolve looks a user up by email for the supervisors and event intake.
func (u *AuthService) Resolve(ctx context.Context, email string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", email, err)
	}
	if user == nil {
		return nil, fmt.Errorf("resolve %s: %w", email, ErrUserNotFound)
	}
	return user, nil
}

func (u *AuthService) RegisterFCMToken(ctx context.Context, userID string, req *authdto.RegisterFCMTokenRequest) error {
	token, err := u.endpointFor(ctx, req.Token)
	if err != nil {
		return err
	}

	if err := u.tokenRepo.SaveToken(ctx, userID, token, req.DeviceInfo, req.Metadata); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	u.log.WithField("user_id", userID).Debug("[Auth] push token registered")
	return nil
}

func (u *AuthService) UnregisterFCMToken(ctx context.Context, userID, token string) error {
	stored, err := u.endpointFor(ctx, token)
	if err != nil {
		return err
	}
	return u.tokenRepo.DeleteToken(ctx, userID, stored)
}

// endpointFor returns the value stored for a device token. Endpoint
// creation is idempotent, so the same device always maps to the same value.
func (u *AuthService) endpointFor(ctx context.Context, deviceToken string) (string, error) {
	if u.endpoints == nil {
		return deviceToken, nil
	}
	arn, err := u.endpoints.RegisterEndpoint(ctx, deviceToken)
	if err != nil {
		return "", fmt.Errorf("register endpoint: %w", err)
	}
	return arn, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsNotFound reports whether err means the identity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
