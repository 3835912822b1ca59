package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/service"
	"github.com/readproof-dev/readproof/internal/utils"
)

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	type bodyJson struct {
		EssayId    string  `validate:"required" json:"essayId"`
		EssayTitle string  `validate:"required" json:"essayTitle"`
		ParentId   *string `json:"parentCommentId"`
		Content    string  `validate:"required" json:"content"`
		Address    string  `validate:"required,eth_addr" json:"userAddress"`
		Message    string  `validate:"required" json:"message"`
		Signature  string  `validate:"required,eth_sig" json:"signature"`
	}
	var body bodyJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var parentId *domain.CommentId
	if body.ParentId != nil && *body.ParentId != "" {
		id := domain.CommentId(*body.ParentId)
		parentId = &id
	}

	comment, err := h.comments.Create(r.Context(), service.CreateCommentRequest{
		SignedRequest: service.SignedRequest{
			Address:   domain.Address(body.Address),
			Message:   body.Message,
			Signature: body.Signature,
		},
		EssayId:    domain.EssayId(body.EssayId),
		EssayTitle: body.EssayTitle,
		ParentId:   parentId,
		Content:    body.Content,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	commentId := chi.URLParam(r, "commentId")

	type bodyJson struct {
		Content   string `validate:"required" json:"content"`
		Address   string `validate:"required,eth_addr" json:"userAddress"`
		Message   string `validate:"required" json:"message"`
		Signature string `validate:"required,eth_sig" json:"signature"`
	}
	var body bodyJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.comments.Edit(r.Context(), service.EditCommentRequest{
		SignedRequest: service.SignedRequest{
			Address:   domain.Address(body.Address),
			Message:   body.Message,
			Signature: body.Signature,
		},
		CommentId: domain.CommentId(commentId),
		Content:   body.Content,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentId := chi.URLParam(r, "commentId")

	type bodyJson struct {
		Address   string `validate:"required,eth_addr" json:"userAddress"`
		Message   string `validate:"required" json:"message"`
		Signature string `validate:"required,eth_sig" json:"signature"`
	}
	var body bodyJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	mode, err := h.comments.Delete(r.Context(), service.DeleteCommentRequest{
		SignedRequest: service.SignedRequest{
			Address:   domain.Address(body.Address),
			Message:   body.Message,
			Signature: body.Signature,
		},
		CommentId: domain.CommentId(commentId),
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deletion": mode})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	essayId := chi.URLParam(r, "essayId")

	page, err := h.comments.List(r.Context(), service.ListCommentsRequest{
		EssayId: domain.EssayId(essayId),
		SortBy:  domain.SortOrder(r.URL.Query().Get("sort")),
		Limit:   queryInt(r, "limit"),
		Offset:  queryInt(r, "offset"),
		Viewer:  domain.Address(r.URL.Query().Get("viewer")),
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
