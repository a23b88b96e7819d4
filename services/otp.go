package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lumenapp/server/core"
	"github.com/lumenapp/server/pkg/crypto"
)

// OtpTTL is how long a reset code stays redeemable.
const OtpTTL = 10 * time.Minute

// OtpManager drives the reset-code lifecycle on a credential record:
// no active code, a pending code, and back again. Codes are stored hashed
// with the same primitive as passwords; expiry is enforced lazily on
// validation rather than by a background sweep.
type OtpManager struct {
	store     core.UserStore
	passwords crypto.PasswordHandler
	clock     clockwork.Clock
}

func NewOtpManager(store core.UserStore, passwords crypto.PasswordHandler, clock clockwork.Clock) *OtpManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OtpManager{store: store, passwords: passwords, clock: clock}
}

// Issue generates a fresh 6-digit code for the given channel, persists
// its hash with a 10-minute expiry, and returns the plaintext for
// out-of-band delivery. Issuing overwrites any previously pending code;
// only the latest code is ever redeemable.
func (m *OtpManager) Issue(ctx context.Context, user *core.User, channel core.OtpChannel) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := m.passwords.Hash(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	pending := &core.PendingOtp{
		Hash:      hash,
		ExpiresAt: m.clock.Now().Add(OtpTTL),
		Channel:   channel,
	}
	updated, err := m.store.Update(ctx, user.ID, core.UserUpdate{Otp: pending})
	if err != nil {
		return "", fmt.Errorf("failed to persist code: %w", err)
	}
	*user = *updated

	return code, nil
}

// Validate checks a submitted code against the pending one. A wrong code
// leaves the pending state untouched so the user can retry until expiry;
// an expired code is cleared on the spot. Validate never consumes a
// matching code - the caller clears it once the dependent operation has
// fully succeeded, so a failed downstream step leaves the code
// redeemable.
func (m *OtpManager) Validate(ctx context.Context, user *core.User, channel core.OtpChannel, code string) error {
	if user.Otp == nil {
		return core.ErrNoActiveOtp
	}
	if user.Otp.Channel != channel {
		return core.ErrOtpChannelMismatch
	}
	if user.Otp.ExpiredAt(m.clock.Now()) {
		if err := m.Clear(ctx, user); err != nil {
			return err
		}
		return core.ErrOtpExpired
	}

	valid, err := m.passwords.Verify(code, user.Otp.Hash)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !valid {
		return core.ErrOtpInvalid
	}
	return nil
}

// Clear removes any pending code. Idempotent.
func (m *OtpManager) Clear(ctx context.Context, user *core.User) error {
	updated, err := m.store.Update(ctx, user.ID, core.UserUpdate{ClearOtp: true})
	if err != nil {
		return fmt.Errorf("failed to clear code: %w", err)
	}
	*user = *updated
	return nil
}

// generateCode draws a uniform 6-digit numeric code, leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}
