// Package google verifies Google-issued ID tokens.
package google

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/lumenapp/server/core"
)

// Verifier checks ID token signatures against Google's published keys
// and enforces the expected audience.
type Verifier struct {
	audience string
}

var _ core.TokenVerifier = (*Verifier)(nil)

func NewVerifier(audience string) *Verifier {
	return &Verifier{audience: audience}
}

func (v *Verifier) Verify(ctx context.Context, token string) (*core.FederatedClaims, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidIDToken, err)
	}

	return &core.FederatedClaims{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Phone:   claimString(payload.Claims, "phone_number"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
