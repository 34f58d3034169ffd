package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "genius-keeper-backend/internal/auth/domain"
	authdto "genius-keeper-backend/internal/auth/dto"
	"genius-keeper-backend/internal/auth/repository"
	"genius-keeper-backend/internal/testutil"
	"genius-keeper-backend/pkg/config"
)

type fakeRegistrar struct {
	calls int
}

func (f *fakeRegistrar) RegisterEndpoint(_ context.Context, deviceToken string) (string, error) {
	f.calls++
	return "arn:aws:sns:endpoint/" + deviceToken, nil
}

func newService(t *testing.T, endpoints EndpointRegistrar) (*AuthService, repository.FCMTokenRepository) {
	t.Helper()
	db := testutil.NewTestDB(t, &authdomain.User{}, &authdomain.FCMToken{})
	tokens := repository.NewFCMTokenRepository(db)
	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: time.Hour}
	return NewAuthUsecase(repository.NewUserRepository(db), tokens, endpoints, cfg), tokens
}

func TestRegisterLoginValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t, nil)

	reg, err := svc.Register(ctx, &authdto.RegisterRequest{
		Email: "Manager@Example.com", Password: "secret123", Name: "Lupe", Role: "manager",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "manager@example.com" {
		t.Errorf("email should be normalized, got %q", reg.User.Email)
	}

	if _, err := svc.Register(ctx, &authdto.RegisterRequest{Email: "manager@example.com", Password: "secret123", Name: "x"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register err = %v", err)
	}

	login, err := svc.Login(ctx, &authdto.LoginRequest{Email: "manager@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Login(ctx, &authdto.LoginRequest{Email: "manager@example.com", Password: "nope123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}

	user, err := svc.ValidateToken(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.ID != reg.User.ID || user.Role != authdomain.RoleManager {
		t.Errorf("validated user = %+v", user)
	}

	if _, err := svc.ValidateToken(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token err = %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t, nil)

	issuedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	resp, err := svc.Register(ctx, &authdto.RegisterRequest{Email: "m@example.com", Password: "secret123", Name: "M"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(ctx, resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t, nil)

	if _, err := svc.Register(ctx, &authdto.RegisterRequest{Email: "ops@example.com", Password: "secret123", Name: "Ops"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Resolve(ctx, " OPS@example.com ")
	if err != nil || user.Email != "ops@example.com" {
		t.Fatalf("Resolve = (%v, %v)", user, err)
	}

	_, err = svc.Resolve(ctx, "ghost@example.com")
	if !IsNotFound(err) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestRegisterFCMTokenThroughEndpointRegistrar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := &fakeRegistrar{}
	svc, tokens := newService(t, reg)

	req := &authdto.RegisterFCMTokenRequest{Token: "device-1", DeviceInfo: "Pixel"}
	if err := svc.RegisterFCMToken(ctx, "u1", req); err != nil {
		t.Fatalf("RegisterFCMToken: %v", err)
	}
	if err := svc.RegisterFCMToken(ctx, "u1", req); err != nil {
		t.Fatalf("RegisterFCMToken again: %v", err)
	}

	stored, _ := tokens.GetTokensByUserID(ctx, "u1")
	if len(stored) != 1 || stored[0].Token != "arn:aws:sns:endpoint/device-1" {
		t.Fatalf("stored tokens = %+v", stored)
	}

	if err := svc.UnregisterFCMToken(ctx, "u1", "device-1"); err != nil {
		t.Fatalf("UnregisterFCMToken: %v", err)
	}
	stored, _ = tokens.GetTokensByUserID(ctx, "u1")
	if len(stored) != 0 {
		t.Errorf("token should be removed, got %d", len(stored))
	}
	if reg.calls != 3 {
		t.Errorf("registrar calls = %d, want 3", reg.calls)
	}
}
