package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
)

// FederatedService reconciles externally verified identities into
// credential records and signs their holders in.
type FederatedService struct {
	store     core.UserStore
	verifier  core.TokenVerifier
	sessions  *SessionIssuer
	passwords crypto.PasswordHandler
	phones    core.PhoneNormalizer
	log       zerolog.Logger
}

func NewFederatedService(store core.UserStore, verifier core.TokenVerifier, sessions *SessionIssuer, passwords crypto.PasswordHandler, phones core.PhoneNormalizer, log zerolog.Logger) *FederatedService {
	return &FederatedService{
		store:     store,
		verifier:  verifier,
		sessions:  sessions,
		passwords: passwords,
		phones:    phones,
		log:       log,
	}
}

// FederatedResult is the outcome of a federated sign-in. FirstLogin only
// informs client messaging, never logic.
type FederatedResult struct {
	User       *core.User `json:"user"`
	Token      string     `json:"token"`
	FirstLogin bool       `json:"firstLogin"`
}

// SignIn verifies a provider ID token and signs the holder in, creating a
// record on first contact.
func (s *FederatedService) SignIn(ctx context.Context, idToken string) (*FederatedResult, error) {
	if idToken == "" {
		return nil, core.ErrIDTokenRequired
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, first, err := s.Reconcile(ctx, claims)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	if first {
		s.log.Info().Str("user_id", user.ID).Msg("new user created via federated login")
	}

	return &FederatedResult{User: user, Token: token, FirstLogin: first}, nil
}

// Reconcile merges verified claims into an existing record matched by
// email, or creates a fresh federated record. User-supplied data always
// wins: an existing federated binding, phone, or picture is never
// overwritten - two external accounts sharing an email are treated as the
// same person, keyed by whichever bound first.
func (s *FederatedService) Reconcile(ctx context.Context, claims *core.FederatedClaims) (*core.User, bool, error) {
	if claims.Email == "" {
		return nil, false, core.ErrFederatedEmailMissing
	}

	user, err := s.store.FindByIdentity(ctx, core.IdentityQuery{Email: claims.Email})
	switch {
	case err == nil:
		merged, err := s.merge(ctx, user, claims)
		return merged, false, err
	case errors.Is(err, core.ErrNotFound):
		created, err := s.create(ctx, claims)
		return created, true, err
	default:
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}
}

// merge persists only the fields the record is missing.
func (s *FederatedService) merge(ctx context.Context, user *core.User, claims *core.FederatedClaims) (*core.User, error) {
	upd := core.UserUpdate{}
	changed := false

	if user.FederatedID == "" && claims.Subject != "" {
		upd.FederatedID = &claims.Subject
		changed = true
	}
	if user.Phone == "" && claims.Phone != "" {
		phone := s.phones.Normalize(claims.Phone)
		upd.Phone = &phone
		changed = true
	}
	if user.Picture == "" && claims.Picture != "" {
		upd.Picture = &claims.Picture
		changed = true
	}
	if !changed {
		return user, nil
	}

	updated, err := s.store.Update(ctx, user.ID, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

func (s *FederatedService) create(ctx context.Context, claims *core.FederatedClaims) (*core.User, error) {
	// Federated accounts still get a password hash so the local-mode
	// invariant needs no nullable special case. The secret is random and
	// never leaves this function.
	placeholder, err := crypto.NanoID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder secret: %w", err)
	}
	hash, err := s.passwords.Hash(placeholder)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder secret: %w", err)
	}

	user := &core.User{
		Name:         claims.Name,
		Email:        claims.Email,
		Phone:        s.phones.Normalize(claims.Phone),
		Picture:      claims.Picture,
		PasswordHash: hash,
		FederatedID:  claims.Subject,
		AuthMode:     core.AuthModeFederated,
	}
	return s.store.Create(ctx, user)
}
