package setup

import (
	"github.com/readproof-dev/readproof/internal/config"
	"github.com/readproof-dev/readproof/internal/ens"
	"github.com/readproof-dev/readproof/internal/handler"
	"github.com/readproof-dev/readproof/internal/service"
	"github.com/readproof-dev/readproof/internal/storage/pg"
	"github.com/readproof-dev/readproof/internal/wallet"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Config  *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	verifier := wallet.New(cfg.Public.FreshnessWindow.Duration)
	resolver := ens.New(cfg.Public.EthRpcUrl, cfg.Public.EnsCacheTTL.Duration)

	attestations := service.NewAttestation(storage, verifier, resolver, &cfg.Public)
	comments := service.NewComment(storage, verifier, resolver, &cfg.Public)
	votes := service.NewVote(storage, verifier)

	h := handler.New(attestations, comments, votes, storage, cfg)

	return &Dependencies{
		Storage: storage,
		Handler: h,
		Config:  cfg,
	}, nil
}
