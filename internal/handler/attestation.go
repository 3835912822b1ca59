package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/service"
	"github.com/readproof-dev/readproof/internal/utils"
)

func (h *Handler) Attest(w http.ResponseWriter, r *http.Request) {
	type bodyJson struct {
		EssayId    string `validate:"required" json:"essayId"`
		EssayTitle string `validate:"required" json:"essayTitle"`
		Address    string `validate:"required,eth_addr" json:"userAddress"`
		Message    string `validate:"required" json:"message"`
		Signature  string `validate:"required,eth_sig" json:"signature"`
	}
	var body bodyJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	attestation, err := h.attestations.Attest(r.Context(), service.AttestRequest{
		SignedRequest: service.SignedRequest{
			Address:   domain.Address(body.Address),
			Message:   body.Message,
			Signature: body.Signature,
		},
		EssayId:    domain.EssayId(body.EssayId),
		EssayTitle: body.EssayTitle,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attestation)
}

func (h *Handler) ListAttestations(w http.ResponseWriter, r *http.Request) {
	essayId := chi.URLParam(r, "essayId")

	page, err := h.attestations.List(r.Context(), service.ListAttestationsRequest{
		EssayId: domain.EssayId(essayId),
		Limit:   queryInt(r, "limit"),
		Offset:  queryInt(r, "offset"),
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetAttestation serves the single signed-read record the badge renderer
// consumes.
func (h *Handler) GetAttestation(w http.ResponseWriter, r *http.Request) {
	essayId := chi.URLParam(r, "essayId")
	address := chi.URLParam(r, "address")

	attestation, err := h.attestations.Get(r.Context(), domain.EssayId(essayId), domain.Address(address))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attestation)
}

// queryInt reads an integer query parameter, 0 when absent or malformed.
// Services apply their own defaults and bounds.
func queryInt(r *http.Request, name string) int {
	val, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return val
}
