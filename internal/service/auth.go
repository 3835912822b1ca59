package service

import (
	"context"
	"time"

	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"
)

// SignatureVerifier checks wallet signatures and the freshness of the signed
// message. Satisfied by wallet.Verifier.
type SignatureVerifier interface {
	Verify(message, signature string, claimed domain.Address) bool
	Freshness(message string) (time.Time, error)
}

// EnsResolver turns an address into its reverse-resolved name, nil when there
// is none or resolution is unavailable. Satisfied by ens.Resolver.
type EnsResolver interface {
	Lookup(ctx context.Context, addr domain.Address) *string
}

// SignedRequest is the auth envelope every mutating request carries.
type SignedRequest struct {
	Address   domain.Address
	Message   string
	Signature string
}

// authenticate runs the shared check order: the message must be fresh, its
// fields must match what the request claims (crossCheck), and the signature
// must recover to the claimed address.
func authenticate(v SignatureVerifier, req SignedRequest, crossCheck func() error) (domain.Address, error) {
	if _, err := v.Freshness(req.Message); err != nil {
		return "", err
	}
	if err := crossCheck(); err != nil {
		return "", err
	}
	if !v.Verify(req.Message, req.Signature, req.Address) {
		return "", internal_errors.Authentication("Signature does not match the claimed address")
	}
	return domain.NormalizeAddress(req.Address), nil
}
