package models

// BatchOwnershipRequest asks the NFT indexer for the current owner of each token ID
type BatchOwnershipRequest struct {
	ChainID         int64    `json:"chainId"`
	ContractAddress string   `json:"contractAddress"`
	TokenIDs        []string `json:"tokenIds"`
}

// BatchOwnershipResponse maps token ID to its owner record.
// Tokens the indexer has never seen minted are absent from Result.
type BatchOwnershipResponse struct {
	Result map[string]TokenOwner `json:"result"`
}

type TokenOwner struct {
	Owner string `json:"owner"`
}
