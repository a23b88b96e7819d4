package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
)

// ResetService runs the two-step OTP password reset flow: request a code
// over one channel, then confirm with the code and a new password.
type ResetService struct {
	store     core.UserStore
	passwords crypto.PasswordHandler
	otps      *OtpManager
	notifier  core.Notifier
	phones    core.PhoneNormalizer
	log       zerolog.Logger
}

func NewResetService(store core.UserStore, passwords crypto.PasswordHandler, otps *OtpManager, notifier core.Notifier, phones core.PhoneNormalizer, log zerolog.Logger) *ResetService {
	return &ResetService{
		store:     store,
		passwords: passwords,
		otps:      otps,
		notifier:  notifier,
		phones:    phones,
		log:       log,
	}
}

// ResetRequestInput targets exactly one channel: email or phone.
type ResetRequestInput struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ResetIssued reports a persisted reset code. Delivered is false when the
// notifier could not reach the channel; the code stays live until expiry
// either way.
type ResetIssued struct {
	Channel   core.OtpChannel
	Code      string
	Delivered bool
}

// RequestReset issues a reset code for the account matching the given
// identifier and hands it to the notifier. A delivery failure downgrades
// the outcome instead of aborting: the code is already persisted and can
// be resent or surfaced another way.
func (s *ResetService) RequestReset(ctx context.Context, input ResetRequestInput) (*ResetIssued, error) {
	channel, err := core.ValidateResetTarget(input.Email, input.Phone)
	if err != nil {
		return nil, err
	}

	user, err := s.store.FindByIdentity(ctx, core.IdentityQuery{
		Email: input.Email,
		Phone: s.phones.Normalize(input.Phone),
	})
	if err != nil {
		return nil, err
	}

	code, err := s.otps.Issue(ctx, user, channel)
	if err != nil {
		return nil, err
	}

	delivered := true
	if err := s.deliver(ctx, user, channel, code); err != nil {
		delivered = false
		s.log.Warn().Err(err).
			Str("user_id", user.ID).
			Str("channel", string(channel)).
			Msg("reset code issued but undelivered")
	}

	return &ResetIssued{Channel: channel, Code: code, Delivered: delivered}, nil
}

func (s *ResetService) deliver(ctx context.Context, user *core.User, channel core.OtpChannel, code string) error {
	if channel == core.OtpChannelPhone {
		return s.notifier.SendSMSCode(ctx, user.Phone, code)
	}
	return s.notifier.SendEmailCode(ctx, user.Email, code)
}

// ResetConfirmInput redeems a pending code. The identifier must address
// the same channel the code was issued for.
type ResetConfirmInput struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Code        string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ConfirmReset redeems a pending code and installs the new password. The
// code is cleared only after the password write succeeds, so a failed
// write leaves it redeemable until expiry.
func (s *ResetService) ConfirmReset(ctx context.Context, input ResetConfirmInput) error {
	channel, err := core.ValidateResetTarget(input.Email, input.Phone)
	if err != nil {
		return err
	}
	if err := core.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	user, err := s.store.FindByIdentity(ctx, core.IdentityQuery{
		Email: input.Email,
		Phone: s.phones.Normalize(input.Phone),
	})
	if err != nil {
		return err
	}

	if err := s.otps.Validate(ctx, user, channel, input.Code); err != nil {
		return err
	}

	// Skip the re-hash when the "new" password is the old one.
	if user.PasswordHash != "" {
		same, err := s.passwords.Verify(input.NewPassword, user.PasswordHash)
		if err != nil {
			return fmt.Errorf("failed to verify password: %w", err)
		}
		if same {
			return s.otps.Clear(ctx, user)
		}
	}

	hash, err := s.passwords.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.store.Update(ctx, user.ID, core.UserUpdate{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")

	return s.otps.Clear(ctx, user)
}
