package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/service"
	"github.com/readproof-dev/readproof/internal/utils"
)

func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	commentId := chi.URLParam(r, "commentId")

	type bodyJson struct {
		VoteType  string `validate:"required,oneof=upvote downvote" json:"voteType"`
		Address   string `validate:"required,eth_addr" json:"userAddress"`
		Message   string `validate:"required" json:"message"`
		Signature string `validate:"required,eth_sig" json:"signature"`
	}
	var body bodyJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.votes.Cast(r.Context(), service.CastVoteRequest{
		SignedRequest: service.SignedRequest{
			Address:   domain.Address(body.Address),
			Message:   body.Message,
			Signature: body.Signature,
		},
		CommentId: domain.CommentId(commentId),
		VoteType:  domain.VoteType(body.VoteType),
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) RetractVote(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.votes.Retract(r.Context(), service.RetractVoteRequest{
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
	writeJSON(w, http.StatusOK, result)
}
