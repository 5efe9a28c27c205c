package explorer

import (
	"context"
	"net/url"
	"strconv"
)

// Balance returns the native-coin balance of an address.
func (c *Client) Balance(ctx context.Context, address string) (Balance, error) {
	if !ValidAddress(address) {
		return Balance{}, Errorf(ErrCodeInvalidAddress, "invalid address: %s", address)
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("tag", "latest")

	var wei string
	if err := c.get(ctx, "account", "balance", params, c.cfg.CacheTTL, &wei); err != nil {
		return Balance{}, err
	}
	return Balance{Wei: wei}, nil
}

// Transactions lists normal transactions for an address.
//
// startBlock/endBlock bound the queried range (0 and 99999999 for all),
// page is 1-indexed, offset is the page size (max 10000), sort is
// "asc" or "desc".
func (c *Client) Transactions(ctx context.Context, address string, startBlock, endBlock uint64, page, offset int, sort string) ([]Transaction, error) {
	if !ValidAddress(address) {
		return nil, Errorf(ErrCodeInvalidAddress, "invalid address: %s", address)
	}

	var txs []Transaction
	if err := c.get(ctx, "account", "txlist", listParams(address, startBlock, endBlock, page, offset, sort), c.cfg.CacheTTL, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// InternalTransactions lists contract-internal transfers for an address.
func (c *Client) InternalTransactions(ctx context.Context, address string, startBlock, endBlock uint64, page, offset int, sort string) ([]InternalTransaction, error) {
	if !ValidAddress(address) {
		return nil, Errorf(ErrCodeInvalidAddress, "invalid address: %s", address)
	}

	var txs []InternalTransaction
	if err := c.get(ctx, "account", "txlistinternal", listParams(address, startBlock, endBlock, page, offset, sort), c.cfg.CacheTTL, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func listParams(address string, startBlock, endBlock uint64, page, offset int, sort string) url.Values {
	params := url.Values{}
	params.Set("address", address)
	params.Set("startblock", strconv.FormatUint(startBlock, 10))
	params.Set("endblock", strconv.FormatUint(endBlock, 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("sort", sort)
	return params
}
