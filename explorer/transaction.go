package explorer

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// TransactionByHash looks up a transaction through the proxy endpoint.
func (c *Client) TransactionByHash(ctx context.Context, txHash string) (ProxyTransaction, error) {
	if !ValidTxHash(txHash) {
		return ProxyTransaction{}, Errorf(ErrCodeInvalidTxHash, "invalid transaction hash: %s", txHash)
	}

	params := url.Values{}
	params.Set("txhash", txHash)

	var tx ProxyTransaction
	if err := c.get(ctx, "proxy", "eth_getTransactionByHash", params, c.cfg.CacheTTL, &tx); err != nil {
		return ProxyTransaction{}, err
	}
	return tx, nil
}

// TransactionReceipt looks up a transaction receipt through the proxy endpoint.
func (c *Client) TransactionReceipt(ctx context.Context, txHash string) (TransactionReceipt, error) {
	if !ValidTxHash(txHash) {
		return TransactionReceipt{}, Errorf(ErrCodeInvalidTxHash, "invalid transaction hash: %s", txHash)
	}

	params := url.Values{}
	params.Set("txhash", txHash)

	var receipt TransactionReceipt
	if err := c.get(ctx, "proxy", "eth_getTransactionReceipt", params, c.cfg.CacheTTL, &receipt); err != nil {
		return TransactionReceipt{}, err
	}
	return receipt, nil
}

// BlockNumber returns the current chain head. The result is cached with a
// short TTL regardless of the configured read TTL.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	ttl := c.cfg.CacheTTL
	if ttl > blockNumberTTL {
		ttl = blockNumberTTL
	}

	var blockHex string
	if err := c.get(ctx, "proxy", "eth_blockNumber", nil, ttl, &blockHex); err != nil {
		return 0, err
	}

	block, err := strconv.ParseUint(strings.TrimPrefix(blockHex, "0x"), 16, 64)
	if err != nil {
		return 0, Errorf(ErrCodeDecode, "invalid block number %q", blockHex)
	}
	return block, nil
}

// Confirmations returns how many blocks have been mined on top of the block
// containing txHash, inclusive. A pending transaction has zero confirmations.
func (c *Client) Confirmations(ctx context.Context, txHash string) (uint64, error) {
	tx, err := c.TransactionByHash(ctx, txHash)
	if err != nil {
		return 0, err
	}

	txBlock := tx.BlockHeight()
	if txBlock == 0 {
		return 0, nil
	}

	currentBlock, err := c.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	return DeriveConfirmations(currentBlock, txBlock, 0), nil
}
