package ownership

import (
	"context"
	"fmt"
	"ms-verify/internal/config"
	"ms-verify/internal/models"
	"ms-verify/internal/ownership/chain"
	"ms-verify/internal/ownership/indexer"
	"net/http"
)

// Lookup returns the current owner of each token ID. Tokens without an owner
// are absent from the map.
type Lookup interface {
	OwnersOf(ctx context.Context, contractAddress string, tokenIDs []string) (map[string]models.TokenOwner, error)
}

// New builds the backend selected by cfg.Ownership.Backend.
func New(ctx context.Context, cfg *config.Config, client *http.Client) (Lookup, error) {
	if err := cfg.Ownership.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Ownership.Backend {
	case config.BackendChain:
		c, err := chain.Dial(ctx, cfg.Ownership.RPCURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		if client == nil {
			client = &http.Client{Timeout: cfg.Ownership.Timeout}
		}
		return indexer.NewClient(
			cfg.Ownership.IndexerURL,
			cfg.Chain.ChainID,
			indexer.WithHTTPClient(client),
			indexer.WithCredentials(cfg.Ownership.IndexerClientID, cfg.Ownership.IndexerSecret),
		), nil
	}
}

// Func adapts a plain function to Lookup.
type Func func(ctx context.Context, contractAddress string, tokenIDs []string) (map[string]models.TokenOwner, error)

func (f Func) OwnersOf(ctx context.Context, contractAddress string, tokenIDs []string) (map[string]models.TokenOwner, error) {
	return f(ctx, contractAddress, tokenIDs)
}

var _ Lookup = (*indexer.Client)(nil)
var _ Lookup = (*chain.Client)(nil)
var _ Lookup = Func(nil)

// Describe names the backend behind l for startup logs.
func Describe(l Lookup) string {
	switch l.(type) {
	case *indexer.Client:
		return config.BackendIndexer
	case *chain.Client:
		return config.BackendChain
	default:
		return fmt.Sprintf("%T", l)
	}
}
