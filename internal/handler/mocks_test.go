package handler

import (
	"context"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/readproof-dev/readproof/internal/config"
	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/service"
)

// MockAttestationService implements service.AttestationService
type MockAttestationService struct {
	MockAttest func(ctx context.Context, req service.AttestRequest) (domain.AttestationView, error)
	MockList   func(ctx context.Context, req service.ListAttestationsRequest) (domain.AttestationPage, error)
	MockGet    func(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.AttestationView, error)
}

func (m *MockAttestationService) Attest(ctx context.Context, req service.AttestRequest) (domain.AttestationView, error) {
	if m.MockAttest != nil {
		return m.MockAttest(ctx, req)
	}
	return domain.AttestationView{Reader: req.Address, EssayId: req.EssayId}, nil
}

func (m *MockAttestationService) List(ctx context.Context, req service.ListAttestationsRequest) (domain.AttestationPage, error) {
	if m.MockList != nil {
		return m.MockList(ctx, req)
	}
	return domain.AttestationPage{EssayId: req.EssayId, Readers: []domain.AttestationView{}}, nil
}

func (m *MockAttestationService) Get(ctx context.Context, essayId domain.EssayId, reader domain.Address) (domain.AttestationView, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, essayId, reader)
	}
	return domain.AttestationView{Reader: reader, EssayId: essayId}, nil
}

// MockCommentService implements service.CommentService
type MockCommentService struct {
	MockCreate func(ctx context.Context, req service.CreateCommentRequest) (domain.CommentView, error)
	MockEdit   func(ctx context.Context, req service.EditCommentRequest) (domain.CommentView, error)
	MockDelete func(ctx context.Context, req service.DeleteCommentRequest) (string, error)
	MockList   func(ctx context.Context, req service.ListCommentsRequest) (domain.CommentPage, error)
}

func (m *MockCommentService) Create(ctx context.Context, req service.CreateCommentRequest) (domain.CommentView, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, req)
	}
	return domain.CommentView{Id: "comment-1", EssayId: req.EssayId, Content: req.Content}, nil
}

func (m *MockCommentService) Edit(ctx context.Context, req service.EditCommentRequest) (domain.CommentView, error) {
	if m.MockEdit != nil {
		return m.MockEdit(ctx, req)
	}
	return domain.CommentView{Id: req.CommentId, Content: req.Content, IsEdited: true}, nil
}

func (m *MockCommentService) Delete(ctx context.Context, req service.DeleteCommentRequest) (string, error) {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, req)
	}
	return domain.DeletionHard, nil
}

func (m *MockCommentService) List(ctx context.Context, req service.ListCommentsRequest) (domain.CommentPage, error) {
	if m.MockList != nil {
		return m.MockList(ctx, req)
	}
	return domain.CommentPage{EssayId: req.EssayId, Comments: []domain.CommentView{}}, nil
}

// MockVoteService implements service.VoteService
type MockVoteService struct {
	MockCast    func(ctx context.Context, req service.CastVoteRequest) (domain.VoteResult, error)
	MockRetract func(ctx context.Context, req service.RetractVoteRequest) (domain.VoteResult, error)
}

func (m *MockVoteService) Cast(ctx context.Context, req service.CastVoteRequest) (domain.VoteResult, error) {
	if m.MockCast != nil {
		return m.MockCast(ctx, req)
	}
	return domain.VoteResult{Score: 1, UpvoteCount: 1}, nil
}

func (m *MockVoteService) Retract(ctx context.Context, req service.RetractVoteRequest) (domain.VoteResult, error) {
	if m.MockRetract != nil {
		return m.MockRetract(ctx, req)
	}
	return domain.VoteResult{}, nil
}

type MockPinger struct {
	PingFunc func() error
}

func (m *MockPinger) Ping() error {
	if m.PingFunc != nil {
		return m.PingFunc()
	}
	return nil
}

func setupTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/v1/attestations", h.Attest)
	r.Get("/v1/essays/{essayId}/attestations", h.ListAttestations)
	r.Get("/v1/essays/{essayId}/attestations/{address}", h.GetAttestation)
	r.Get("/v1/essays/{essayId}/comments", h.ListComments)
	r.Post("/v1/comments", h.CreateComment)
	r.Patch("/v1/comments/{commentId}", h.EditComment)
	r.Delete("/v1/comments/{commentId}", h.DeleteComment)
	r.Post("/v1/comments/{commentId}/votes", h.CastVote)
	r.Delete("/v1/comments/{commentId}/votes", h.RetractVote)
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	return r
}

func newTestHandler(attestations service.AttestationService, comments service.CommentService, votes service.VoteService, pinger Pinger) *Handler {
	cfg := config.NewForTesting(config.Public{}, config.Private{})
	return New(attestations, comments, votes, pinger, cfg)
}

const testAddress = "0x1111111111111111111111111111111111111111"

var testSignature = "0x" + strings.Repeat("ab", 65)
