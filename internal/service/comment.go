package service

import (
	"context"
	"unicode/utf8"

	"github.com/readproof-dev/readproof/internal/config"
	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"
	"github.com/readproof-dev/readproof/internal/protocol"
	"github.com/readproof-dev/readproof/internal/service/utils"
	"github.com/readproof-dev/readproof/internal/wallet"
)

// to mock service in tests
type CommentService interface {
	Create(ctx context.Context, req CreateCommentRequest) (domain.CommentView, error)
	Edit(ctx context.Context, req EditCommentRequest) (domain.CommentView, error)
	Delete(ctx context.Context, req DeleteCommentRequest) (string, error)
	List(ctx context.Context, req ListCommentsRequest) (domain.CommentPage, error)
}

type Comment struct {
	storage  CommentStorage
	verifier SignatureVerifier
	ens      EnsResolver
	cfg      *config.Public
}

type CommentStorage interface {
	CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error)
	EditComment(ctx context.Context, id domain.CommentId, content string, requester domain.Address) (domain.Comment, error)
	DeleteComment(ctx context.Context, id domain.CommentId, requester domain.Address) (string, error)
	ListComments(ctx context.Context, essayId domain.EssayId, sortBy domain.SortOrder, limit, offset int, viewer domain.Address) (domain.CommentPage, error)
}

type CreateCommentRequest struct {
	SignedRequest
	EssayId    domain.EssayId
	EssayTitle string
	ParentId   *domain.CommentId
	Content    string
}

type EditCommentRequest struct {
	SignedRequest
	CommentId domain.CommentId
	Content   string
}

type DeleteCommentRequest struct {
	SignedRequest
	CommentId domain.CommentId
}

type ListCommentsRequest struct {
	EssayId domain.EssayId
	SortBy  domain.SortOrder
	Limit   int
	Offset  int
	Viewer  domain.Address // empty when the caller is anonymous
}

func NewComment(storage CommentStorage, verifier SignatureVerifier, ens EnsResolver, cfg *config.Public) CommentService {
	return &Comment{storage, verifier, ens, cfg}
}

func (c *Comment) Create(ctx context.Context, req CreateCommentRequest) (domain.CommentView, error) {
	author, err := authenticate(c.verifier, req.SignedRequest, func() error {
		// the signer saw the raw content, so cross-check before sanitizing
		return protocol.VerifyPostComment(req.Message, req.EssayId, req.ParentId, req.Content)
	})
	if err != nil {
		return domain.CommentView{}, err
	}

	content, err := c.prepareContent(req.Content)
	if err != nil {
		return domain.CommentView{}, err
	}

	comment, err := c.storage.CreateComment(ctx, domain.CommentCreationData{
		EssayId:     req.EssayId,
		Content:     content,
		ParentId:    req.ParentId,
		Author:      author,
		EnsName:     c.ens.Lookup(ctx, author),
		Signature:   req.Signature,
		MessageHash: wallet.HashMessage(req.Message),
	})
	if err != nil {
		return domain.CommentView{}, err
	}
	return comment.View(), nil
}

func (c *Comment) Edit(ctx context.Context, req EditCommentRequest) (domain.CommentView, error) {
	author, err := authenticate(c.verifier, req.SignedRequest, func() error {
		return protocol.VerifyEditComment(req.Message, req.CommentId, req.Content)
	})
	if err != nil {
		return domain.CommentView{}, err
	}

	content, err := c.prepareContent(req.Content)
	if err != nil {
		return domain.CommentView{}, err
	}

	comment, err := c.storage.EditComment(ctx, req.CommentId, content, author)
	if err != nil {
		return domain.CommentView{}, err
	}
	return comment.View(), nil
}

// Delete reports which deletion mode the storage chose, soft or hard.
func (c *Comment) Delete(ctx context.Context, req DeleteCommentRequest) (string, error) {
	author, err := authenticate(c.verifier, req.SignedRequest, func() error {
		return protocol.VerifyDeleteComment(req.Message, req.CommentId)
	})
	if err != nil {
		return "", err
	}
	return c.storage.DeleteComment(ctx, req.CommentId, author)
}

func (c *Comment) List(ctx context.Context, req ListCommentsRequest) (domain.CommentPage, error) {
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = domain.SortByScore
	}
	if sortBy != domain.SortByScore && sortBy != domain.SortByRecent {
		return domain.CommentPage{}, internal_errors.Validation("Unknown sort order")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = c.cfg.DefaultPageSize
	}
	limit = min(limit, c.cfg.MaxPageSize)
	offset := max(0, req.Offset)

	viewer := domain.NormalizeAddress(req.Viewer)
	return c.storage.ListComments(ctx, req.EssayId, sortBy, limit, offset, viewer)
}

// prepareContent strips markup and enforces the length bounds on what is
// actually stored.
func (c *Comment) prepareContent(raw string) (string, error) {
	content := utils.SanitizeContent(raw)
	if content == "" {
		return "", internal_errors.Validation("Comment content is empty")
	}
	if utf8.RuneCountInString(content) > c.cfg.MaxCommentLength {
		return "", internal_errors.Validation("Comment content is too long")
	}
	return content, nil
}
