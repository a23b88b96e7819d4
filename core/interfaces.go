package core

import "context"

// Ports define interfaces for external collaborators.

// ============================================
// STORAGE PORTS
// ============================================

// IdentityQuery selects a credential record by any of the provided
// identifiers. Empty fields are ignored; the rest combine with OR
// semantics, so a match on any one identifier returns the record.
type IdentityQuery struct {
	Email       string
	Phone       string
	FederatedID string
}

// Empty reports whether no identifier was provided at all.
func (q IdentityQuery) Empty() bool {
	return q.Email == "" && q.Phone == "" && q.FederatedID == ""
}

// UserUpdate is an atomic partial merge applied to a stored record. Nil
// fields are left untouched. Otp installs a pending reset code; ClearOtp
// removes one - the two are mutually exclusive and ClearOtp wins.
type UserUpdate struct {
	Name         *string
	Phone        *string
	Picture      *string
	PasswordHash *string
	FederatedID  *string
	Otp          *PendingOtp
	ClearOtp     bool
}

// UserStore defines credential-record persistence. Implementations
// enforce uniqueness of email, phone, and federated id at write time and
// return ErrConflict without partial mutation on a collision. Writes are
// durable before the call returns.
type UserStore interface {
	FindByIdentity(ctx context.Context, q IdentityQuery) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
}

// ContentStore defines generated-content persistence.
type ContentStore interface {
	Insert(ctx context.Context, c *Content) (*Content, error)
	FindContentByID(ctx context.Context, id string) (*Content, error)
	FindContentByUser(ctx context.Context, userID string) ([]*Content, error)
}

// Store is what a full storage backend provides.
type Store interface {
	UserStore
	ContentStore
}

// ============================================
// COLLABORATOR PORTS
// ============================================

// Notifier delivers reset codes out of band. Delivery is best-effort:
// callers log failures and carry on, because the code is already
// persisted by the time delivery is attempted.
type Notifier interface {
	SendEmailCode(ctx context.Context, address, code string) error
	SendSMSCode(ctx context.Context, number, code string) error
}

// FederatedClaims are identity-provider claims that have already been
// cryptographically verified.
type FederatedClaims struct {
	Subject string
	Email   string
	Name    string
	Phone   string
	Picture string
}

// TokenVerifier checks a provider-issued ID token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedClaims, error)
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
