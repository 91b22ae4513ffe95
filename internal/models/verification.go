package models

import "time"

type VerifyResponse struct {
	Verified bool `json:"verified"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// VerificationEvent is published to the audit topic after every completed check
type VerificationEvent struct {
	EventID         string    `json:"eventId"`
	WalletAddress   string    `json:"walletAddress"`
	Verified        bool      `json:"verified"`
	ContestIDs      []int     `json:"contestIds"`
	ContractAddress string    `json:"contractAddress"`
	ChainID         int64     `json:"chainId"`
	CheckedAt       time.Time `json:"checkedAt"`
}
