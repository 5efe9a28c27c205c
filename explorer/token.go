package explorer

import (
	"context"
	"net/url"
)

// TokenTransfers lists ERC-20 transfers involving an address. A non-empty
// contractAddress restricts results to that token.
func (c *Client) TokenTransfers(ctx context.Context, address, contractAddress string, startBlock, endBlock uint64, page, offset int, sort string) ([]TokenTransfer, error) {
	if !ValidAddress(address) {
		return nil, Errorf(ErrCodeInvalidAddress, "invalid address: %s", address)
	}
	if contractAddress != "" && !ValidAddress(contractAddress) {
		return nil, Errorf(ErrCodeInvalidAddress, "invalid contract address: %s", contractAddress)
	}

	params := listParams(address, startBlock, endBlock, page, offset, sort)
	if contractAddress != "" {
		params.Set("contractaddress", contractAddress)
	}

	var transfers []TokenTransfer
	if err := c.get(ctx, "account", "tokentx", params, c.cfg.CacheTTL, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

// TokenBalance returns the ERC-20 balance of an address for one token
// contract, in the token's smallest unit.
func (c *Client) TokenBalance(ctx context.Context, address, contractAddress string) (TokenBalance, error) {
	if !ValidAddress(address) {
		return TokenBalance{}, Errorf(ErrCodeInvalidAddress, "invalid address: %s", address)
	}
	if !ValidAddress(contractAddress) {
		return TokenBalance{}, Errorf(ErrCodeInvalidAddress, "invalid contract address: %s", contractAddress)
	}

	params := url.Values{}
	params.Set("contractaddress", contractAddress)
	params.Set("address", address)
	params.Set("tag", "latest")

	var raw string
	if err := c.get(ctx, "account", "tokenbalance", params, c.cfg.CacheTTL, &raw); err != nil {
		return TokenBalance{}, err
	}
	return TokenBalance{ContractAddress: contractAddress, Raw: raw}, nil
}
