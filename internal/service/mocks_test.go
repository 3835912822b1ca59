package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/wallet"
)

// Mock structs
type MockCommentStorage struct {
	CreateCommentFunc func(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error)
	EditCommentFunc   func(ctx context.Context, id domain.CommentId, content string, requester domain.Address) (domain.Comment, error)
	DeleteCommentFunc func(ctx context.Context, id domain.CommentId, requester domain.Address) (string, error)
	ListCommentsFunc  func(ctx context.Context, essayId domain.EssayId, sortBy domain.SortOrder, limit, offset int, viewer domain.Address) (domain.CommentPage, error)
}

func (m *MockCommentStorage) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error) {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, data)
	}
	return domain.Comment{Id: "comment-1", EssayId: data.EssayId, Content: data.Content, Author: data.Author, ParentId: data.ParentId}, nil
}

func (m *MockCommentStorage) EditComment(ctx context.Context, id domain.CommentId, content string, requester domain.Address) (domain.Comment, error) {
	if m.EditCommentFunc != nil {
		return m.EditCommentFunc(ctx, id, content, requester)
	}
	return domain.Comment{Id: id, Content: content, Author: requester, IsEdited: true}, nil
}

func (m *MockCommentStorage) DeleteComment(ctx context.Context, id domain.CommentId, requester domain.Address) (string, error) {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, id, requester)
	}
	return domain.DeletionHard, nil
}

func (m *MockCommentStorage) ListComments(ctx context.Context, essayId domain.EssayId, sortBy domain.SortOrder, limit, offset int, viewer domain.Address) (domain.CommentPage, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, essayId, sortBy, limit, offset, viewer)
	}
	return domain.CommentPage{EssayId: essayId}, nil
}

type MockVoteStorage struct {
	CastVoteFunc    func(ctx context.Context, commentId domain.CommentId, voter domain.Address, voteType domain.VoteType) (domain.VoteResult, error)
	RetractVoteFunc func(ctx context.Context, commentId domain.CommentId, voter domain.Address) (domain.VoteResult, error)
}

func (m *MockVoteStorage) CastVote(ctx context.Context, commentId domain.CommentId, voter domain.Address, voteType domain.VoteType) (domain.VoteResult, error) {
	if m.CastVoteFunc != nil {
		return m.CastVoteFunc(ctx, commentId, voter, voteType)
	}
	return domain.VoteResult{Score: 1, UpvoteCount: 1}, nil
}

func (m *MockVoteStorage) RetractVote(ctx context.Context, commentId domain.CommentId, voter domain.Address) (domain.VoteResult, error) {
	if m.RetractVoteFunc != nil {
		return m.RetractVoteFunc(ctx, commentId, voter)
	}
	return domain.VoteResult{}, nil
}

type MockAttestationStorage struct {
	UpsertAttestationFunc func(ctx context.Context, data *domain.AttestationCreationData) (domain.Attestation, error)
	ListAttestationsFunc  func(ctx context.Context, essayId domain.EssayId, limit, offset int) (domain.AttestationPage, error)
	GetAttestationFunc    func(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.Attestation, error)
}

func (m *MockAttestationStorage) UpsertAttestation(ctx context.Context, data *domain.AttestationCreationData) (domain.Attestation, error) {
	if m.UpsertAttestationFunc != nil {
		return m.UpsertAttestationFunc(ctx, data)
	}
	return domain.Attestation{Reader: data.Reader, EssayId: data.EssayId, Signature: data.Signature, SignedAt: time.Now()}, nil
}

func (m *MockAttestationStorage) ListAttestations(ctx context.Context, essayId domain.EssayId, limit, offset int) (domain.AttestationPage, error) {
	if m.ListAttestationsFunc != nil {
		return m.ListAttestationsFunc(ctx, essayId, limit, offset)
	}
	return domain.AttestationPage{EssayId: essayId}, nil
}

func (m *MockAttestationStorage) GetAttestation(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.Attestation, error) {
	if m.GetAttestationFunc != nil {
		return m.GetAttestationFunc(ctx, essayId, reader)
	}
	return domain.Attestation{Reader: reader, EssayId: essayId}, nil
}

type MockEnsResolver struct {
	LookupFunc func(ctx context.Context, addr domain.Address) *string
}

func (m *MockEnsResolver) Lookup(ctx context.Context, addr domain.Address) *string {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, addr)
	}
	return nil
}

// Services are tested against real signatures so the whole authenticate path
// runs, not a stubbed verifier.

type signer struct {
	key     *ecdsa.PrivateKey
	address domain.Address
}

func newSigner(t *testing.T) signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return signer{key: key, address: domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex())}
}

func (s signer) sign(t *testing.T, message string) string {
	t.Helper()
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	sig, err := crypto.Sign(crypto.Keccak256([]byte(prefixed)), s.key)
	if err != nil {
		t.Fatalf("failed to sign message: %v", err)
	}
	return hexutil.Encode(sig)
}

func (s signer) signedRequest(t *testing.T, message string) SignedRequest {
	t.Helper()
	return SignedRequest{Address: s.address, Message: message, Signature: s.sign(t, message)}
}

func newTestVerifier() *wallet.Verifier {
	return wallet.New(5 * time.Minute)
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
