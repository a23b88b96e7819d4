package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
)

// SignUpInput contains the data needed to register a new local account.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// AuthResult is a signed-in user plus their session token.
type AuthResult struct {
	User  *core.User `json:"user"`
	Token string     `json:"token"`
}

// AuthService handles local signup, login, and profile access.
type AuthService struct {
	store     core.UserStore
	passwords crypto.PasswordHandler
	sessions  *SessionIssuer
	phones    core.PhoneNormalizer
	log       zerolog.Logger
}

func NewAuthService(store core.UserStore, passwords crypto.PasswordHandler, sessions *SessionIssuer, phones core.PhoneNormalizer, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		sessions:  sessions,
		phones:    phones,
		log:       log,
	}
}

// SignUp registers a new local account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if err := core.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := core.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := core.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        s.phones.Normalize(input.Phone),
		PasswordHash: hash,
		AuthMode:     core.AuthModeLocal,
	}
	created, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user signed up")

	return &AuthResult{User: created, Token: token}, nil
}

// SignIn authenticates a local account by email and password. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if password == "" {
		return nil, core.ErrPasswordRequired
	}

	user, err := s.store.FindByIdentity(ctx, core.IdentityQuery{Email: email})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwords.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser loads the record behind an authenticated session.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*core.User, error) {
	return s.store.FindByID(ctx, id)
}

// ProfileUpdate carries the caller-editable fields. Nil means unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile applies an explicit profile mutation. The phone number is
// normalized before it is stored, so uniqueness checks see the canonical
// form.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, input ProfileUpdate) (*core.User, error) {
	upd := core.UserUpdate{}
	if input.Name != nil {
		if err := core.ValidateName(*input.Name); err != nil {
			return nil, err
		}
		upd.Name = input.Name
	}
	if input.Phone != nil {
		normalized := s.phones.Normalize(*input.Phone)
		upd.Phone = &normalized
	}
	return s.store.Update(ctx, id, upd)
}
