package service

import (
	"context"

	"github.com/readproof-dev/readproof/internal/config"
	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/protocol"
	"github.com/readproof-dev/readproof/internal/wallet"
)

type AttestationService interface {
	Attest(ctx context.Context, req AttestRequest) (domain.AttestationView, error)
	List(ctx context.Context, req ListAttestationsRequest) (domain.AttestationPage, error)
	Get(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.AttestationView, error)
}

type Attestation struct {
	storage  AttestationStorage
	verifier SignatureVerifier
	ens      EnsResolver
	cfg      *config.Public
}

type AttestationStorage interface {
	UpsertAttestation(ctx context.Context, data *domain.AttestationCreationData) (domain.Attestation, error)
	ListAttestations(ctx context.Context, essayId domain.EssayId, limit, offset int) (domain.AttestationPage, error)
	GetAttestation(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.Attestation, error)
}

type AttestRequest struct {
	SignedRequest
	EssayId    domain.EssayId
	EssayTitle string
}

type ListAttestationsRequest struct {
	EssayId domain.EssayId
	Limit   int
	Offset  int
}

func NewAttestation(storage AttestationStorage, verifier SignatureVerifier, ens EnsResolver, cfg *config.Public) AttestationService {
	return &Attestation{storage, verifier, ens, cfg}
}

func (a *Attestation) Attest(ctx context.Context, req AttestRequest) (domain.AttestationView, error) {
	reader, err := authenticate(a.verifier, req.SignedRequest, func() error {
		return protocol.VerifyAttest(req.Message, req.EssayId)
	})
	if err != nil {
		return domain.AttestationView{}, err
	}

	attestation, err := a.storage.UpsertAttestation(ctx, &domain.AttestationCreationData{
		Reader:      reader,
		EssayId:     req.EssayId,
		EnsName:     a.ens.Lookup(ctx, reader),
		Signature:   req.Signature,
		MessageHash: wallet.HashMessage(req.Message),
	})
	if err != nil {
		return domain.AttestationView{}, err
	}
	return attestation.View(), nil
}

func (a *Attestation) List(ctx context.Context, req ListAttestationsRequest) (domain.AttestationPage, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = a.cfg.DefaultPageSize
	}
	limit = min(limit, a.cfg.MaxPageSize)
	offset := max(0, req.Offset)

	return a.storage.ListAttestations(ctx, req.EssayId, limit, offset)
}

func (a *Attestation) Get(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.AttestationView, error) {
	attestation, err := a.storage.GetAttestation(ctx, essayId, domain.NormalizeAddress(reader))
	if err != nil {
		return domain.AttestationView{}, err
	}
	return attestation.View(), nil
}
