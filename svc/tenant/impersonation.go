package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/storekit/storekit/pkg/token"
)

// PurposeImpersonation tags tokens minted to bootstrap a session inside a
// tenant's own auth system.
const PurposeImpersonation = "impersonation"

// ImpersonationTokenPayload is the full content of an impersonation token.
// Deliberately minimal: no permissions or role claims travel here, it is a
// bootstrap artifact, not a session replacement.
type ImpersonationTokenPayload struct {
	TenantID string `json:"tenant_id"`
	Purpose  string `json:"purpose"`
	ExpireAt int64  `json:"exp"` // Unix timestamp
}

// GenerateImpersonationToken mints a signed, short-lived token letting an
// already-authorized operator be treated as the tenant for one subsequent
// request. The consuming endpoint must re-validate ownership before honoring
// it; the short lifetime is the primary defense against replay.
func (s *Service) GenerateImpersonationToken(tenantID uuid.UUID) (string, error) {
	return token.GenerateToken(ImpersonationTokenPayload{
		TenantID: tenantID.String(),
		Purpose:  PurposeImpersonation,
		ExpireAt: time.Now().Add(s.cfg.TokenTTL).Unix(),
	}, s.cfg.TokenSecret)
}

// ParseImpersonationToken verifies the signature, purpose tag, and expiry of
// an impersonation token and returns the tenant it designates.
func (s *Service) ParseImpersonationToken(raw string) (uuid.UUID, error) {
	payload, err := token.ParseToken[ImpersonationTokenPayload](raw, s.cfg.TokenSecret)
	if err != nil {
		return uuid.Nil, err
	}
	if payload.Purpose != PurposeImpersonation {
		return uuid.Nil, ErrInvalidTokenPurpose
	}
	if time.Now().Unix() > payload.ExpireAt {
		return uuid.Nil, ErrTokenExpired
	}
	return uuid.Parse(payload.TenantID)
}
