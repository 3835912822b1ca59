package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"
)

// UpsertAttestation records that an address has read an essay. Re-attesting
// refreshes the signature and the timestamp rather than failing; one row per
// (address, essay) pair is the invariant the primary key enforces.
func (s *Storage) UpsertAttestation(ctx context.Context, data *domain.AttestationCreationData) (domain.Attestation, error) {
	attestation := domain.Attestation{
		Reader:      data.Reader,
		EssayId:     data.EssayId,
		EnsName:     data.EnsName,
		Signature:   data.Signature,
		MessageHash: data.MessageHash,
	}
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO attestations(reader_address, essay_id, ens_name, signature, message_hash)
	VALUES($1, $2, $3, $4, $5)
	ON CONFLICT (reader_address, essay_id) DO UPDATE SET
		ens_name = COALESCE(EXCLUDED.ens_name, attestations.ens_name),
		signature = EXCLUDED.signature,
		message_hash = EXCLUDED.message_hash,
		signed_at = now()
	RETURNING signed_at`,
		data.Reader, data.EssayId, data.EnsName, data.Signature, data.MessageHash,
	).Scan(&attestation.SignedAt)
	if err != nil {
		return domain.Attestation{}, fmt.Errorf("failed to upsert attestation: %w", err)
	}
	return attestation, nil
}

// ListAttestations returns the readers of an essay, most recent first.
func (s *Storage) ListAttestations(ctx context.Context, essayId domain.EssayId, limit, offset int) (domain.AttestationPage, error) {
	page := domain.AttestationPage{EssayId: essayId, Readers: []domain.AttestationView{}}

	if err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM attestations WHERE essay_id = $1`, essayId).Scan(&page.Total); err != nil {
		return domain.AttestationPage{}, fmt.Errorf("failed to count attestations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT reader_address, essay_id, ens_name, signature, message_hash, signed_at
	FROM attestations
	WHERE essay_id = $1
	ORDER BY signed_at DESC
	LIMIT $2 OFFSET $3`, essayId, limit, offset)
	if err != nil {
		return domain.AttestationPage{}, fmt.Errorf("failed to list attestations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		attestation, err := scanAttestation(rows)
		if err != nil {
			return domain.AttestationPage{}, err
		}
		page.Readers = append(page.Readers, attestation.View())
	}
	if err := rows.Err(); err != nil {
		return domain.AttestationPage{}, fmt.Errorf("failed to iterate attestations: %w", err)
	}
	return page, nil
}

// GetAttestation fetches the attestation one address made for one essay,
// which is what the badge renderer asks for.
func (s *Storage) GetAttestation(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.Attestation, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT reader_address, essay_id, ens_name, signature, message_hash, signed_at
	FROM attestations
	WHERE essay_id = $1 AND reader_address = $2`, essayId, reader)
	attestation, err := scanAttestation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Attestation{}, internal_errors.NotFound("Attestation not found")
		}
		return domain.Attestation{}, err
	}
	return attestation, nil
}

func scanAttestation(row rowScanner) (domain.Attestation, error) {
	var a domain.Attestation
	err := row.Scan(&a.Reader, &a.EssayId, &a.EnsName, &a.Signature, &a.MessageHash, &a.SignedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Attestation{}, err
		}
		return domain.Attestation{}, fmt.Errorf("failed to scan attestation: %w", err)
	}
	return a, nil
}
