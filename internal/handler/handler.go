package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/readproof-dev/readproof/internal/config"
	"github.com/readproof-dev/readproof/internal/service"
)

type Handler struct {
	attestations service.AttestationService
	comments     service.CommentService
	votes        service.VoteService
	pinger       Pinger
	cfg          *config.Config
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping() error
}

func New(attestations service.AttestationService, comments service.CommentService, votes service.VoteService, pinger Pinger, cfg *config.Config) *Handler {
	return &Handler{attestations, comments, votes, pinger, cfg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
