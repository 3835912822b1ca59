package domain

import "time"

// Attestation is a signed-read record: proof that Reader signed the
// "I have read" message for an essay. Unique per (Reader, EssayId);
// re-signing refreshes Signature and SignedAt.
type Attestation struct {
	Reader      Address
	EssayId     EssayId
	Signature   string
	MessageHash string
	EnsName     *string
	SignedAt    time.Time
}

type AttestationCreationData struct {
	Reader      Address
	EssayId     EssayId
	Signature   string
	MessageHash string
	EnsName     *string
}

// AttestationView is the readers-list projection. Unlike CommentView it keeps
// the signature: the badge collaborator consumes the full signed-read record.
type AttestationView struct {
	Reader    Address   `json:"userAddress"`
	EssayId   EssayId   `json:"essayId"`
	EnsName   *string   `json:"ensName"`
	SignedAt  time.Time `json:"signedAt"`
	Signature string    `json:"signature"`
}

func (a *Attestation) View() AttestationView {
	return AttestationView{
		Reader:    a.Reader,
		EssayId:   a.EssayId,
		EnsName:   a.EnsName,
		SignedAt:  a.SignedAt,
		Signature: a.Signature,
	}
}

type AttestationPage struct {
	EssayId EssayId           `json:"essayId"`
	Total   int               `json:"count"`
	Readers []AttestationView `json:"signatures"`
}
