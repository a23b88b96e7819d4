package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
)

func newAuthFixture(t *testing.T) (*AuthService, *FakeStore) {
	t.Helper()
	store := NewFakeStore()
	sessions, err := NewSessionIssuer(testSecret, DefaultSessionTTL, nil)
	if err != nil {
		t.Fatalf("NewSessionIssuer() error = %v", err)
	}
	service := NewAuthService(store, crypto.NewArgon2(), sessions, core.PhoneNormalizer{}, zerolog.Nop())
	return service, store
}

// Requirement: SignUp creates a local account, normalizes the phone
// number, hashes the password, and signs the user in.
func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		input   SignUpInput
		setup   func(*testing.T, *AuthService)
		wantErr error
	}{
		{
			name:  "creates user and session",
			input: SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "secret1", Phone: "9876543210"},
		},
		{
			name:    "empty name",
			input:   SignUpInput{Email: "ann@example.com", Password: "secret1"},
			wantErr: core.ErrNameRequired,
		},
		{
			name:    "malformed email",
			input:   SignUpInput{Name: "Ann", Email: "not-an-email", Password: "secret1"},
			wantErr: core.ErrInvalidEmail,
		},
		{
			name:    "short password",
			input:   SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "12345"},
			wantErr: core.ErrPasswordTooShort,
		},
		{
			name:  "duplicate email",
			input: SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"},
			setup: func(t *testing.T, s *AuthService) {
				if _, err := s.SignUp(context.Background(), SignUpInput{Name: "First", Email: "ann@example.com", Password: "secret1"}); err != nil {
					t.Fatalf("setup SignUp() error = %v", err)
				}
			},
			wantErr: core.ErrConflict,
		},
		{
			name:  "duplicate phone after normalization",
			input: SignUpInput{Name: "Ann", Email: "ann2@example.com", Password: "secret1", Phone: "9876543210"},
			setup: func(t *testing.T, s *AuthService) {
				if _, err := s.SignUp(context.Background(), SignUpInput{Name: "First", Email: "ann@example.com", Password: "secret1", Phone: "+919876543210"}); err != nil {
					t.Fatalf("setup SignUp() error = %v", err)
				}
			},
			wantErr: core.ErrConflict,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			service, _ := newAuthFixture(t)
			if test.setup != nil {
				test.setup(t, service)
			}

			// Act
			result, err := service.SignUp(context.Background(), test.input)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("SignUp() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				return
			}
			if result.Token == "" {
				t.Error("SignUp() should return a session token")
			}
			if result.User.AuthMode != core.AuthModeLocal {
				t.Errorf("SignUp() auth mode = %q, want local", result.User.AuthMode)
			}
			if result.User.PasswordHash == test.input.Password {
				t.Error("SignUp() must not store the plaintext password")
			}
			if test.input.Phone != "" && result.User.Phone != "+919876543210" {
				t.Errorf("SignUp() phone = %q, want normalized +919876543210", result.User.Phone)
			}
		})
	}
}

// Requirement: an unknown email and a wrong password both surface as the
// same credential error.
func TestAuthService_SignIn(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "ann@example.com", password: "secret1"},
		{name: "unknown email", email: "ghost@example.com", password: "secret1", wantErr: core.ErrInvalidCredentials},
		{name: "wrong password", email: "ann@example.com", password: "wrong99", wantErr: core.ErrInvalidCredentials},
		{name: "empty email", email: "", password: "secret1", wantErr: core.ErrEmailRequired},
		{name: "empty password", email: "ann@example.com", password: "", wantErr: core.ErrPasswordRequired},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			service, _ := newAuthFixture(t)
			if _, err := service.SignUp(context.Background(), SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"}); err != nil {
				t.Fatalf("setup SignUp() error = %v", err)
			}

			// Act
			result, err := service.SignIn(context.Background(), test.email, test.password)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("SignIn() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && result.Token == "" {
				t.Error("SignIn() should return a session token")
			}
		})
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	service, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := service.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	user, err := service.CurrentUser(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.Email != "ann@example.com" {
		t.Errorf("CurrentUser() email = %q", user.Email)
	}

	if _, err := service.CurrentUser(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("CurrentUser(missing) error = %v, want ErrNotFound", err)
	}
}

// Requirement: profile updates normalize the phone before persisting.
func TestAuthService_UpdateProfile(t *testing.T) {
	service, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := service.SignUp(ctx, SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	name := "Ann B"
	phone := "09876543210"
	user, err := service.UpdateProfile(ctx, result.User.ID, ProfileUpdate{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.Name != "Ann B" {
		t.Errorf("UpdateProfile() name = %q", user.Name)
	}
	if user.Phone != "+919876543210" {
		t.Errorf("UpdateProfile() phone = %q, want +919876543210", user.Phone)
	}

	empty := ""
	if _, err := service.UpdateProfile(ctx, result.User.ID, ProfileUpdate{Name: &empty}); !errors.Is(err, core.ErrNameRequired) {
		t.Errorf("UpdateProfile(empty name) error = %v, want ErrNameRequired", err)
	}
}
