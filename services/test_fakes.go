package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumenapp/server/core"
)

// FakeStore is a test-only in-memory implementation of core.Store. It
// enforces the same uniqueness rules as the real adapters and exposes
// error fields for behavior injection.
type FakeStore struct {
	mu       sync.Mutex
	users    map[string]*core.User
	contents map[string]*core.Content
	seq      int

	findErr   error
	createErr error
	updateErr error
}

var _ core.Store = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:    make(map[string]*core.User),
		contents: make(map[string]*core.Content),
	}
}

func cloneUser(u *core.User) *core.User {
	out := *u
	if u.Otp != nil {
		otp := *u.Otp
		out.Otp = &otp
	}
	return &out
}

func (f *FakeStore) FindByIdentity(ctx context.Context, q core.IdentityQuery) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if q.Empty() {
		return nil, core.ErrNotFound
	}
	for _, u := range f.users {
		if (q.Email != "" && u.Email == q.Email) ||
			(q.Phone != "" && u.Phone == q.Phone) ||
			(q.FederatedID != "" && u.FederatedID == q.FederatedID) {
			return cloneUser(u), nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *FakeStore) FindByID(ctx context.Context, id string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, core.ErrNotFound
}

// conflicts reports whether another record already owns one of the
// candidate's identifiers. Empty identifiers never conflict (sparse).
func (f *FakeStore) conflicts(candidate *core.User, excludeID string) bool {
	for id, u := range f.users {
		if id == excludeID {
			continue
		}
		if (candidate.Email != "" && u.Email == candidate.Email) ||
			(candidate.Phone != "" && u.Phone == candidate.Phone) ||
			(candidate.FederatedID != "" && u.FederatedID == candidate.FederatedID) {
			return true
		}
	}
	return false
}

func (f *FakeStore) Create(ctx context.Context, u *core.User) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.conflicts(u, "") {
		return nil, core.ErrConflict
	}
	f.seq++
	stored := cloneUser(u)
	stored.ID = fmt.Sprintf("user-%d", f.seq)
	stored.CreatedAt = time.Now()
	f.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (f *FakeStore) Update(ctx context.Context, id string, upd core.UserUpdate) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	existing, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	merged := cloneUser(existing)
	if upd.Name != nil {
		merged.Name = *upd.Name
	}
	if upd.Phone != nil {
		merged.Phone = *upd.Phone
	}
	if upd.Picture != nil {
		merged.Picture = *upd.Picture
	}
	if upd.PasswordHash != nil {
		merged.PasswordHash = *upd.PasswordHash
	}
	if upd.FederatedID != nil {
		merged.FederatedID = *upd.FederatedID
	}
	if upd.Otp != nil {
		otp := *upd.Otp
		merged.Otp = &otp
	}
	if upd.ClearOtp {
		merged.Otp = nil
	}

	if f.conflicts(merged, id) {
		return nil, core.ErrConflict
	}
	f.users[id] = merged
	return cloneUser(merged), nil
}

func (f *FakeStore) Insert(ctx context.Context, c *core.Content) (*core.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	stored := *c
	stored.ID = fmt.Sprintf("content-%d", f.seq)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.contents[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *FakeStore) FindContentByID(ctx context.Context, id string) (*core.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.contents[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, core.ErrNotFound
}

func (f *FakeStore) FindContentByUser(ctx context.Context, userID string) ([]*core.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*core.Content
	for _, c := range f.contents {
		if c.UserID == userID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

// FakeNotifier records deliveries and can be told to fail.
type FakeNotifier struct {
	mu     sync.Mutex
	emails []string // "address:code"
	smses  []string // "number:code"
	err    error
}

var _ core.Notifier = (*FakeNotifier)(nil)

func NewFakeNotifier() *FakeNotifier { return &FakeNotifier{} }

func (f *FakeNotifier) SendEmailCode(ctx context.Context, address, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, address+":"+code)
	return nil
}

func (f *FakeNotifier) SendSMSCode(ctx context.Context, number, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.smses = append(f.smses, number+":"+code)
	return nil
}

// FakeVerifier returns canned claims for any token.
type FakeVerifier struct {
	claims *core.FederatedClaims
	err    error
}

var _ core.TokenVerifier = (*FakeVerifier)(nil)

func (f *FakeVerifier) Verify(ctx context.Context, idToken string) (*core.FederatedClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	claims := *f.claims
	return &claims, nil
}

// FakeGenerator echoes a canned response.
type FakeGenerator struct {
	response string
	err      error
}

var _ core.Generator = (*FakeGenerator)(nil)

func (f *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
