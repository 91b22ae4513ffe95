package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"ms-verify/internal/models"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const erc721OwnerOfABI = `[{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

// revertErrorCode is the JSON-RPC code geth uses for execution reverts
const revertErrorCode = 3

type batchCaller interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

// Client reads ERC-721 ownership directly from a node, batching every
// ownerOf call into one JSON-RPC request.
type Client struct {
	rpc batchCaller
	abi abi.ABI
}

type callMsg struct {
	To   *common.Address `json:"to"`
	Data hexutil.Bytes   `json:"data"`
}

func Dial(ctx context.Context, rawURL string) (*Client, error) {
	c, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", rawURL, err)
	}
	return NewClient(c)
}

func NewClient(caller batchCaller) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(erc721OwnerOfABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc721 abi: %w", err)
	}
	return &Client{rpc: caller, abi: parsed}, nil
}

func (c *Client) OwnersOf(ctx context.Context, contractAddress string, tokenIDs []string) (map[string]models.TokenOwner, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}
	to := common.HexToAddress(contractAddress)

	results := make([]hexutil.Bytes, len(tokenIDs))
	batch := make([]rpc.BatchElem, len(tokenIDs))
	for i, id := range tokenIDs {
		n, ok := new(big.Int).SetString(id, 10)
		if !ok {
			return nil, fmt.Errorf("invalid token id %q", id)
		}
		data, err := c.abi.Pack("ownerOf", n)
		if err != nil {
			return nil, fmt.Errorf("pack ownerOf(%s): %w", id, err)
		}
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{callMsg{To: &to, Data: data}, "latest"},
			Result: &results[i],
		}
	}

	if len(batch) == 0 {
		return map[string]models.TokenOwner{}, nil
	}

	if err := c.rpc.BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("ownerOf batch: %w", err)
	}

	owners := make(map[string]models.TokenOwner, len(tokenIDs))
	for i, elem := range batch {
		if elem.Error != nil {
			if isRevert(elem.Error) {
				// unminted or burnt token
				continue
			}
			return nil, fmt.Errorf("ownerOf(%s): %w", tokenIDs[i], elem.Error)
		}
		out, err := c.abi.Unpack("ownerOf", results[i])
		if err != nil {
			return nil, fmt.Errorf("unpack ownerOf(%s): %w", tokenIDs[i], err)
		}
		owner, ok := out[0].(common.Address)
		if !ok {
			return nil, fmt.Errorf("unexpected ownerOf(%s) output %T", tokenIDs[i], out[0])
		}
		owners[tokenIDs[i]] = models.TokenOwner{Owner: owner.Hex()}
	}
	return owners, nil
}

func isRevert(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "revert")
}
