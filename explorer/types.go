package explorer

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ValidAddress reports whether s is a 0x-prefixed 40-hex-character account
// address. Checksummed and lower-case forms are both accepted.
func ValidAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ValidTxHash reports whether s is a 0x-prefixed 64-hex-character
// transaction hash.
func ValidTxHash(s string) bool {
	if len(s) != 66 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// NormalizeAddress returns the EIP-55 checksummed form of an address.
func NormalizeAddress(s string) string {
	return common.HexToAddress(s).Hex()
}

// DeriveConfirmations computes a confirmation count from block heights,
// floored at any upstream-reported value. Every endpoint path derives
// confirmations through this one helper so standard and proxy-style sources
// agree.
func DeriveConfirmations(currentBlock, txBlock, reported uint64) uint64 {
	if currentBlock < txBlock {
		return reported
	}
	derived := currentBlock - txBlock + 1
	if derived < reported {
		return reported
	}
	return derived
}

var weiPerEther = decimal.New(1, 18)

// Balance is a native-coin balance in wei.
type Balance struct {
	Wei string
}

// Ether returns the balance in ether.
func (b Balance) Ether() decimal.Decimal {
	return decimal.NewFromBigInt(parseBig(b.Wei), 0).DivRound(weiPerEther, 18)
}

// TokenBalance is an ERC-20 balance in the token's smallest unit. The
// tokenbalance endpoint does not report token metadata, so the decimal count
// must be supplied by the caller.
type TokenBalance struct {
	ContractAddress string
	Raw             string
}

// Tokens returns the balance in whole token units for the given decimal count.
func (b TokenBalance) Tokens(decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(parseBig(b.Raw), 0).DivRound(decimal.New(1, decimals), decimals)
}

// Transaction is a normal transaction as reported by the account txlist
// endpoint. Numeric fields arrive as decimal strings.
type Transaction struct {
	BlockNumber      string `json:"blockNumber"`
	TimeStamp        string `json:"timeStamp"`
	Hash             string `json:"hash"`
	Nonce            string `json:"nonce"`
	BlockHash        string `json:"blockHash"`
	TransactionIndex string `json:"transactionIndex"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	IsError          string `json:"isError"`
	TxReceiptStatus  string `json:"txreceipt_status"`
	Input            string `json:"input"`
	ContractAddress  string `json:"contractAddress"`
	CumulativeGas    string `json:"cumulativeGasUsed"`
	GasUsed          string `json:"gasUsed"`
	Confirmations    string `json:"confirmations"`
	MethodID         string `json:"methodId,omitempty"`
	FunctionName     string `json:"functionName,omitempty"`
}

// ConfirmationCount returns the reported confirmation count.
func (t Transaction) ConfirmationCount() uint64 {
	return parseUint(t.Confirmations)
}

// BlockHeight returns the block number the transaction was mined in.
func (t Transaction) BlockHeight() uint64 {
	return parseUint(t.BlockNumber)
}

// RawValue returns the transferred value in wei.
func (t Transaction) RawValue() *big.Int {
	return parseBig(t.Value)
}

// ValueEther returns the transferred value in ether.
func (t Transaction) ValueEther() decimal.Decimal {
	return decimal.NewFromBigInt(t.RawValue(), 0).DivRound(weiPerEther, 18)
}

// Successful reports whether the transaction executed without error.
func (t Transaction) Successful() bool {
	return t.IsError == "0" && t.TxReceiptStatus == "1"
}

// InternalTransaction is a contract-internal transfer.
type InternalTransaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	Input           string `json:"input"`
	Type            string `json:"type"`
	Gas             string `json:"gas"`
	GasUsed         string `json:"gasUsed"`
	TraceID         string `json:"traceId"`
	IsError         string `json:"isError"`
	ErrCode         string `json:"errCode"`
}

// RawValue returns the transferred value in wei.
func (t InternalTransaction) RawValue() *big.Int {
	return parseBig(t.Value)
}

// Successful reports whether the internal transfer executed without error.
func (t InternalTransaction) Successful() bool {
	return t.IsError == "0"
}

// TokenTransfer is an ERC-20 transfer event from the tokentx endpoint.
// The endpoint only reports transfers that actually happened, so there is no
// success flag.
type TokenTransfer struct {
	BlockNumber      string `json:"blockNumber"`
	TimeStamp        string `json:"timeStamp"`
	Hash             string `json:"hash"`
	Nonce            string `json:"nonce"`
	BlockHash        string `json:"blockHash"`
	From             string `json:"from"`
	ContractAddress  string `json:"contractAddress"`
	To               string `json:"to"`
	Value            string `json:"value"`
	TokenName        string `json:"tokenName"`
	TokenSymbol      string `json:"tokenSymbol"`
	TokenDecimal     string `json:"tokenDecimal"`
	TransactionIndex string `json:"transactionIndex"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	GasUsed          string `json:"gasUsed"`
	CumulativeGas    string `json:"cumulativeGasUsed"`
	Input            string `json:"input"`
	Confirmations    string `json:"confirmations"`
}

// ConfirmationCount returns the reported confirmation count.
func (t TokenTransfer) ConfirmationCount() uint64 {
	return parseUint(t.Confirmations)
}

// BlockHeight returns the block number the transfer was mined in.
func (t TokenTransfer) BlockHeight() uint64 {
	return parseUint(t.BlockNumber)
}

// DecimalCount returns the token's decimal count, defaulting to 18.
func (t TokenTransfer) DecimalCount() int32 {
	n, err := strconv.ParseInt(t.TokenDecimal, 10, 32)
	if err != nil {
		return 18
	}
	return int32(n)
}

// RawValue returns the transferred value in the token's smallest unit.
func (t TokenTransfer) RawValue() *big.Int {
	return parseBig(t.Value)
}

// ValueTokens returns the transferred value in whole token units.
func (t TokenTransfer) ValueTokens() decimal.Decimal {
	d := t.DecimalCount()
	return decimal.NewFromBigInt(t.RawValue(), 0).DivRound(decimal.New(1, d), d)
}

// ProxyTransaction is a transaction as returned by the proxy
// eth_getTransactionByHash endpoint. Numeric fields are hex-encoded.
type ProxyTransaction struct {
	BlockHash        string `json:"blockHash"`
	BlockNumber      string `json:"blockNumber"`
	From             string `json:"from"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	Hash             string `json:"hash"`
	Input            string `json:"input"`
	Nonce            string `json:"nonce"`
	To               string `json:"to"`
	TransactionIndex string `json:"transactionIndex"`
	Value            string `json:"value"`
}

// BlockHeight returns the block number the transaction was mined in, or 0 if
// it is still pending.
func (t ProxyTransaction) BlockHeight() uint64 {
	return parseHexUint(t.BlockNumber)
}

// TransactionReceipt is the proxy eth_getTransactionReceipt result.
type TransactionReceipt struct {
	BlockHash        string `json:"blockHash"`
	BlockNumber      string `json:"blockNumber"`
	ContractAddress  string `json:"contractAddress"`
	CumulativeGas    string `json:"cumulativeGasUsed"`
	GasUsed          string `json:"gasUsed"`
	Logs             []Log  `json:"logs"`
	Status           string `json:"status"`
	TransactionHash  string `json:"transactionHash"`
	TransactionIndex string `json:"transactionIndex"`
}

// Successful reports whether the receipt status is success (0x1).
func (r TransactionReceipt) Successful() bool {
	return r.Status == "0x1"
}

// BlockHeight returns the block number the transaction was mined in.
func (r TransactionReceipt) BlockHeight() uint64 {
	return parseHexUint(r.BlockNumber)
}

// Log is an event log entry inside a receipt.
type Log struct {
	Address          string   `json:"address"`
	Topics           []string `json:"topics"`
	Data             string   `json:"data"`
	BlockNumber      string   `json:"blockNumber"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
	BlockHash        string   `json:"blockHash"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
}

// GasOracle is the gastracker gasoracle result, prices in gwei.
type GasOracle struct {
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
	GasUsedRatio    string `json:"gasUsedRatio"`
}

// SafeGwei returns the safe gas price in gwei.
func (g GasOracle) SafeGwei() decimal.Decimal { return parseDecimal(g.SafeGasPrice) }

// ProposeGwei returns the proposed gas price in gwei.
func (g GasOracle) ProposeGwei() decimal.Decimal { return parseDecimal(g.ProposeGasPrice) }

// FastGwei returns the fast gas price in gwei.
func (g GasOracle) FastGwei() decimal.Decimal { return parseDecimal(g.FastGasPrice) }

func parseUint(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseHexUint(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
