package core

import "time"

// AuthMode records how an account was established.
//
// A federated account still carries a password hash (an unusable random
// placeholder minted at creation), so "local" accounts are not a special
// case anywhere downstream.
type AuthMode string

const (
	AuthModeLocal     AuthMode = "local"
	AuthModeFederated AuthMode = "federated"
)

// OtpChannel is the delivery channel a reset code was issued for. A code
// requested over one channel cannot be redeemed over the other.
type OtpChannel string

const (
	OtpChannelEmail OtpChannel = "email"
	OtpChannelPhone OtpChannel = "phone"
)

// PendingOtp is an active password-reset window. A nil *PendingOtp on a
// User means no reset is in flight; hash, expiry, and channel always
// travel together.
type PendingOtp struct {
	Hash      string
	ExpiresAt time.Time
	Channel   OtpChannel
}

// ExpiredAt reports whether the code is past its expiry at the given instant.
func (o *PendingOtp) ExpiredAt(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// User represents one end-user credential record
//
// This is the "identity" - who someone is and how they prove it.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Picture      string      `json:"picture,omitempty"`
	PasswordHash string      `json:"-"` // Never expose in JSON
	FederatedID  string      `json:"-"`
	AuthMode     AuthMode    `json:"authMode"`
	Otp          *PendingOtp `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
}
