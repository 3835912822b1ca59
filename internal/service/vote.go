package service

import (
	"context"

	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"
	"github.com/readproof-dev/readproof/internal/protocol"
)

type VoteService interface {
	Cast(ctx context.Context, req CastVoteRequest) (domain.VoteResult, error)
	Retract(ctx context.Context, req RetractVoteRequest) (domain.VoteResult, error)
}

type Vote struct {
	storage  VoteStorage
	verifier SignatureVerifier
}

type VoteStorage interface {
	CastVote(ctx context.Context, commentId domain.CommentId, voter domain.Address, voteType domain.VoteType) (domain.VoteResult, error)
	RetractVote(ctx context.Context, commentId domain.CommentId, voter domain.Address) (domain.VoteResult, error)
}

type CastVoteRequest struct {
	SignedRequest
	CommentId domain.CommentId
	VoteType  domain.VoteType
}

type RetractVoteRequest struct {
	SignedRequest
	CommentId domain.CommentId
}

func NewVote(storage VoteStorage, verifier SignatureVerifier) VoteService {
	return &Vote{storage, verifier}
}

func (v *Vote) Cast(ctx context.Context, req CastVoteRequest) (domain.VoteResult, error) {
	if req.VoteType != domain.Upvote && req.VoteType != domain.Downvote {
		return domain.VoteResult{}, internal_errors.Validation("Unknown vote type")
	}
	voter, err := authenticate(v.verifier, req.SignedRequest, func() error {
		return protocol.VerifyVote(req.Message, req.CommentId, req.VoteType)
	})
	if err != nil {
		return domain.VoteResult{}, err
	}
	return v.storage.CastVote(ctx, req.CommentId, voter, req.VoteType)
}

func (v *Vote) Retract(ctx context.Context, req RetractVoteRequest) (domain.VoteResult, error) {
	voter, err := authenticate(v.verifier, req.SignedRequest, func() error {
		return protocol.VerifyUnvote(req.Message, req.CommentId)
	})
	if err != nil {
		return domain.VoteResult{}, err
	}
	return v.storage.RetractVote(ctx, req.CommentId, voter)
}
